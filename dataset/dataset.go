// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/slopemf/base"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/stat"
)

// Rating is an observed rating keyed by raw ids.
type Rating struct {
	UserId string
	ItemId string
	Value  float64
}

// CSVColumns names the header fields holding user ids, item ids and ratings.
type CSVColumns struct {
	User   string
	Item   string
	Rating string
}

// DefaultCSVColumns matches the keys of the Amazon review corpus.
func DefaultCSVColumns() CSVColumns {
	return CSVColumns{
		User:   "reviewerID",
		Item:   "asin",
		Rating: "overall",
	}
}

// LoadCSV reads ratings from a CSV stream whose first line is a header.
func LoadCSV(r io.Reader, columns CSVColumns) ([]Rating, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NotValidf("csv without header")
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	userCol, itemCol, ratingCol := -1, -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case columns.User:
			userCol = i
		case columns.Item:
			itemCol = i
		case columns.Rating:
			ratingCol = i
		}
	}
	for name, col := range map[string]int{columns.User: userCol, columns.Item: itemCol, columns.Rating: ratingCol} {
		if col < 0 {
			return nil, errors.NotFoundf("column %q", name)
		}
	}
	var ratings []Rating
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		line, _ := reader.FieldPos(0)
		userId, itemId := record[userCol], record[itemCol]
		if userId == "" || itemId == "" {
			return nil, errors.NotValidf("empty id at line %d", line)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[ratingCol]), 64)
		if err != nil {
			return nil, errors.Annotatef(err, "invalid rating at line %d", line)
		}
		ratings = append(ratings, Rating{UserId: userId, ItemId: itemId, Value: value})
	}
	return ratings, nil
}

// Dataset holds training and validation records ready for the engine.
type Dataset struct {
	Train      Records
	Validation Records
	UserDict   *FreqDict
	ItemDict   *FreqDict
	GlobalMean float64
	// ColdUsers and ColdItems count distinct validation ids absent from training.
	ColdUsers int
	ColdItems int
}

// Build holds out testRatio of the shuffled ratings for validation and encodes both
// parts as records. Dense indices come from the training part only. Each record carries
// the training mean rating of its user and item; validation ids unseen in training are
// encoded as ColdStart with the global mean as covariate.
func Build(ratings []Rating, testRatio float64, rng base.RandomGenerator) (*Dataset, error) {
	if testRatio < 0 || testRatio >= 1 {
		return nil, errors.NotValidf("test ratio %v", testRatio)
	}
	shuffled := make([]Rating, len(ratings))
	copy(shuffled, ratings)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	nTest := int(float64(len(shuffled)) * testRatio)
	testSet, trainSet := shuffled[:nTest], shuffled[nTest:]
	if len(trainSet) == 0 {
		return nil, errors.NotValidf("empty training set")
	}

	d := &Dataset{
		UserDict: NewFreqDict(),
		ItemDict: NewFreqDict(),
	}
	values := make([]float64, len(trainSet))
	users := make([]int, len(trainSet))
	items := make([]int, len(trainSet))
	var userSum, itemSum []float64
	for i, rating := range trainSet {
		users[i] = d.UserDict.Add(rating.UserId)
		items[i] = d.ItemDict.Add(rating.ItemId)
		if users[i] == len(userSum) {
			userSum = append(userSum, 0)
		}
		if items[i] == len(itemSum) {
			itemSum = append(itemSum, 0)
		}
		userSum[users[i]] += rating.Value
		itemSum[items[i]] += rating.Value
		values[i] = rating.Value
	}
	d.GlobalMean = stat.Mean(values, nil)
	userMean := make([]float64, len(userSum))
	for u := range userMean {
		userMean[u] = userSum[u] / float64(d.UserDict.Freq(u))
	}
	itemMean := make([]float64, len(itemSum))
	for i := range itemMean {
		itemMean[i] = itemSum[i] / float64(d.ItemDict.Freq(i))
	}

	d.Train = make(Records, 0, len(trainSet)*Columns)
	for i, rating := range trainSet {
		d.Train = d.Train.Append(users[i], items[i], rating.Value, userMean[users[i]], itemMean[items[i]])
	}

	coldUsers := mapset.NewThreadUnsafeSet[string]()
	coldItems := mapset.NewThreadUnsafeSet[string]()
	d.Validation = make(Records, 0, len(testSet)*Columns)
	for _, rating := range testSet {
		u, uMean := d.UserDict.Id(rating.UserId), d.GlobalMean
		if u == ColdStart {
			coldUsers.Add(rating.UserId)
		} else {
			uMean = userMean[u]
		}
		i, iMean := d.ItemDict.Id(rating.ItemId), d.GlobalMean
		if i == ColdStart {
			coldItems.Add(rating.ItemId)
		} else {
			iMean = itemMean[i]
		}
		d.Validation = d.Validation.Append(u, i, rating.Value, uMean, iMean)
	}
	d.ColdUsers = coldUsers.Cardinality()
	d.ColdItems = coldItems.Cardinality()
	return d, nil
}

// CountUsers returns the number of users with trained parameters.
func (d *Dataset) CountUsers() int {
	return d.UserDict.Count()
}

// CountItems returns the number of items with trained parameters.
func (d *Dataset) CountItems() int {
	return d.ItemDict.Count()
}
