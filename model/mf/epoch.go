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
	"github.com/gorse-io/slopemf/base/progress"
	"github.com/gorse-io/slopemf/dataset"
	"github.com/juju/errors"
)

// blockSize is the number of records between two progress reports.
const blockSize = 4096

// RunEpoch performs one SGD pass over records in their given order, updating state in
// place. Later records observe the updates made by earlier ones. Indices are checked
// before any parameter is touched, so a rejected pass leaves state unchanged.
//
// The reporter, if not nil, is called between blocks of records and once at the end
// of the pass. It never runs inside the update loop.
func RunEpoch(records dataset.Records, state *TrainingState, globalMean, lr, reg float64, reporter progress.Reporter) error {
	n := records.Len()
	if n == 0 {
		return errors.Annotate(ErrEmptyInput, "training records")
	}
	if err := state.checkIndices(records, false); err != nil {
		return errors.Trace(err)
	}
	for begin := 0; begin < n; begin += blockSize {
		end := min(begin+blockSize, n)
		sgd(records[begin*dataset.Columns:end*dataset.Columns], state, globalMean, lr, reg)
		if reporter != nil {
			reporter.Report(end, n)
		}
	}
	return nil
}

func sgd(records dataset.Records, s *TrainingState, globalMean, lr, reg float64) {
	nFactors := s.NFactors
	for offset := 0; offset < len(records); offset += dataset.Columns {
		row := records[offset : offset+dataset.Columns : offset+dataset.Columns]
		userIndex, itemIndex := int(row[dataset.ColumnUser]), int(row[dataset.ColumnItem])
		rating := row[dataset.ColumnRating]
		userDev := row[dataset.ColumnUserMean] - globalMean
		itemDev := row[dataset.ColumnItemMean] - globalMean
		userFactor := s.UserFactor[userIndex*nFactors : (userIndex+1)*nFactors : (userIndex+1)*nFactors]
		itemFactor := s.ItemFactor[itemIndex*nFactors : (itemIndex+1)*nFactors : (itemIndex+1)*nFactors]
		// Compute error: e_{ui} = r - \hat r
		pred := globalMean +
			s.UserSlope[userIndex]*userDev + s.UserIntercept[userIndex] +
			s.ItemSlope[itemIndex]*itemDev + s.ItemIntercept[itemIndex]
		for f := range userFactor {
			pred += userFactor[f] * itemFactor[f]
		}
		e := rating - pred
		// Update user bias: k_u <- k_u + \gamma (e (m_u - μ) - \lambda k_u), c_u <- c_u + \gamma (e - \lambda c_u)
		s.UserSlope[userIndex] += lr * (e*userDev - reg*s.UserSlope[userIndex])
		s.UserIntercept[userIndex] += lr * (e - reg*s.UserIntercept[userIndex])
		// Update item bias
		s.ItemSlope[itemIndex] += lr * (e*itemDev - reg*s.ItemSlope[itemIndex])
		s.ItemIntercept[itemIndex] += lr * (e - reg*s.ItemIntercept[itemIndex])
		// Update latent factors, both sides from the values before this record
		for f := range userFactor {
			p, q := userFactor[f], itemFactor[f]
			userFactor[f] += lr * (e*q - reg*p)
			itemFactor[f] += lr * (e*p - reg*q)
		}
	}
}
