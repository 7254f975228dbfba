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

package mf

import (
	"github.com/gorse-io/slopemf/base"
	"github.com/gorse-io/slopemf/dataset"
	"github.com/juju/errors"
)

const (
	initMean   = 0
	initStdDev = 0.1
)

// TrainingState owns every trainable parameter of a session. Factor matrices are
// stored row-major in flat arrays.
type TrainingState struct {
	NUsers   int
	NItems   int
	NFactors int

	UserSlope     []float64 // k_u
	UserIntercept []float64 // c_u
	ItemSlope     []float64 // k_i
	ItemIntercept []float64 // c_i
	UserFactor    []float64 // p_u, NUsers x NFactors
	ItemFactor    []float64 // q_i, NItems x NFactors
}

// NewTrainingState allocates zero biases and draws both factor matrices from
// N(0, 0.1^2).
func NewTrainingState(nUsers, nItems, nFactors int, rng base.RandomGenerator) (*TrainingState, error) {
	if nUsers <= 0 || nItems <= 0 || nFactors <= 0 {
		return nil, errors.Annotatef(ErrInvalidDimension,
			"n_users=%d, n_items=%d, n_factors=%d", nUsers, nItems, nFactors)
	}
	return &TrainingState{
		NUsers:        nUsers,
		NItems:        nItems,
		NFactors:      nFactors,
		UserSlope:     make([]float64, nUsers),
		UserIntercept: make([]float64, nUsers),
		ItemSlope:     make([]float64, nItems),
		ItemIntercept: make([]float64, nItems),
		UserFactor:    rng.NormalVector64(nUsers*nFactors, initMean, initStdDev),
		ItemFactor:    rng.NormalVector64(nItems*nFactors, initMean, initStdDev),
	}, nil
}

// UserFactorRow returns the latent factor of a user as a view into the state.
func (s *TrainingState) UserFactorRow(userIndex int) []float64 {
	return s.UserFactor[userIndex*s.NFactors : (userIndex+1)*s.NFactors : (userIndex+1)*s.NFactors]
}

// ItemFactorRow returns the latent factor of an item as a view into the state.
func (s *TrainingState) ItemFactorRow(itemIndex int) []float64 {
	return s.ItemFactor[itemIndex*s.NFactors : (itemIndex+1)*s.NFactors : (itemIndex+1)*s.NFactors]
}

// Clone a state with deep copy.
func (s *TrainingState) Clone() *TrainingState {
	clone := func(a []float64) []float64 {
		return append([]float64(nil), a...)
	}
	return &TrainingState{
		NUsers:        s.NUsers,
		NItems:        s.NItems,
		NFactors:      s.NFactors,
		UserSlope:     clone(s.UserSlope),
		UserIntercept: clone(s.UserIntercept),
		ItemSlope:     clone(s.ItemSlope),
		ItemIntercept: clone(s.ItemIntercept),
		UserFactor:    clone(s.UserFactor),
		ItemFactor:    clone(s.ItemFactor),
	}
}

// checkIndices verifies that every record refers to parameters of the state. Cold-start
// sentinels are accepted when allowColdStart is set.
func (s *TrainingState) checkIndices(records dataset.Records, allowColdStart bool) error {
	for i := 0; i < records.Len(); i++ {
		row := records.Row(i)
		userIndex, itemIndex := int(row[dataset.ColumnUser]), int(row[dataset.ColumnItem])
		if !inRange(userIndex, s.NUsers, allowColdStart) {
			return errors.Annotatef(ErrIndexOutOfRange, "record %d: user index %d not in [0, %d)", i, userIndex, s.NUsers)
		}
		if !inRange(itemIndex, s.NItems, allowColdStart) {
			return errors.Annotatef(ErrIndexOutOfRange, "record %d: item index %d not in [0, %d)", i, itemIndex, s.NItems)
		}
	}
	return nil
}

func inRange(index, n int, allowColdStart bool) bool {
	return (index >= 0 && index < n) || (allowColdStart && index == dataset.ColdStart)
}
