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
	"context"
	"math"

	"github.com/gorse-io/slopemf/base"
	"github.com/gorse-io/slopemf/common/parallel"
	"github.com/gorse-io/slopemf/dataset"
	"github.com/juju/errors"
	"gonum.org/v1/gonum/floats"
)

// Score is the validation result of a training state.
type Score struct {
	Loss float64 // mean squared residual
	RMSE float64
	MAE  float64
}

// Predict the rating of a user to an item. A user or item index equal to
// dataset.ColdStart contributes neither its bias nor the factor interaction.
func Predict(state *TrainingState, globalMean float64, userIndex, itemIndex int, userMean, itemMean float64) float64 {
	ret := globalMean
	// + k_u (m_u - μ) + c_u
	if userIndex != dataset.ColdStart {
		ret = ret + state.UserSlope[userIndex]*(userMean-globalMean) + state.UserIntercept[userIndex]
	}
	// + k_i (m_i - μ) + c_i
	if itemIndex != dataset.ColdStart {
		ret = ret + state.ItemSlope[itemIndex]*(itemMean-globalMean) + state.ItemIntercept[itemIndex]
	}
	// + q_i^Tp_u
	if userIndex != dataset.ColdStart && itemIndex != dataset.ColdStart {
		ret += floats.Dot(state.UserFactorRow(userIndex), state.ItemFactorRow(itemIndex))
	}
	return ret
}

type residualSums struct {
	squared  float64
	absolute float64
	count    int
}

// Validate computes loss, RMSE and MAE of state over records without modifying it.
// Records are evaluated by jobs workers over contiguous chunks whose partial sums are
// combined in chunk order, so the result only depends on records and jobs.
func Validate(records dataset.Records, state *TrainingState, globalMean float64, jobs int) (Score, error) {
	n := records.Len()
	if n == 0 {
		return Score{}, errors.Annotate(ErrEmptyInput, "validation records")
	}
	if err := state.checkIndices(records, true); err != nil {
		return Score{}, errors.Trace(err)
	}
	chunks := parallel.Split(base.RangeInt(n), max(jobs, 1))
	partial := make([]residualSums, len(chunks))
	err := parallel.Parallel(context.Background(), len(chunks), jobs, func(_, jobId int) error {
		var sums residualSums
		for _, i := range chunks[jobId] {
			row := records.Row(i)
			pred := Predict(state, globalMean,
				int(row[dataset.ColumnUser]), int(row[dataset.ColumnItem]),
				row[dataset.ColumnUserMean], row[dataset.ColumnItemMean])
			residual := row[dataset.ColumnRating] - pred
			sums.squared += residual * residual
			sums.absolute += math.Abs(residual)
			sums.count++
		}
		partial[jobId] = sums
		return nil
	})
	if err != nil {
		return Score{}, errors.Trace(err)
	}
	var total residualSums
	for _, sums := range partial {
		total.squared += sums.squared
		total.absolute += sums.absolute
		total.count += sums.count
	}
	loss := total.squared / float64(total.count)
	return Score{
		Loss: loss,
		RMSE: math.Sqrt(loss),
		MAE:  total.absolute / float64(total.count),
	}, nil
}
