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
)

// Shuffle permutes the rows of records in place and returns them. Rows are moved
// whole. The order is reproducible for a generator created with a fixed seed.
func Shuffle(records dataset.Records, rng base.RandomGenerator) dataset.Records {
	rng.Shuffle(records.Len(), func(i, j int) {
		a, b := records.Row(i), records.Row(j)
		for k := range a {
			a[k], b[k] = b[k], a[k]
		}
	})
	return records
}
