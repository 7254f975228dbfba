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

import "github.com/juju/errors"

// Column offsets of a rating record.
const (
	ColumnUser = iota
	ColumnItem
	ColumnRating
	ColumnUserMean
	ColumnItemMean
	// Columns is the number of fields per record.
	Columns
)

// ColdStart is the user or item index of a validation record whose entity has no
// trained parameters.
const ColdStart = -1

// Records is a row-major table of rating records with Columns fields per row:
// user index, item index, rating, user mean and item mean. Indices are stored as
// floats like every other column.
type Records []float64

// NewRecords wraps a flat row-major array. The length must be a multiple of Columns.
func NewRecords(data []float64) (Records, error) {
	if len(data)%Columns != 0 {
		return nil, errors.NotValidf("record array of length %d with %d columns", len(data), Columns)
	}
	return data, nil
}

// Len returns the number of rows.
func (r Records) Len() int {
	return len(r) / Columns
}

// Row returns the i-th row as a view into the table.
func (r Records) Row(i int) []float64 {
	return r[i*Columns : (i+1)*Columns : (i+1)*Columns]
}

func (r Records) Append(user, item int, rating, userMean, itemMean float64) Records {
	return append(r, float64(user), float64(item), rating, userMean, itemMean)
}

func (r Records) Clone() Records {
	c := make(Records, len(r))
	copy(c, r)
	return c
}
