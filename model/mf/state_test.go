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
	"math"
	"testing"

	"github.com/gorse-io/slopemf/base"
	"github.com/gorse-io/slopemf/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestNewTrainingState(t *testing.T) {
	state, err := NewTrainingState(1000, 500, 10, base.NewRandomGenerator(0))
	require.NoError(t, err)
	assert.Equal(t, 1000, state.NUsers)
	assert.Equal(t, 500, state.NItems)
	assert.Equal(t, 10, state.NFactors)
	assert.Equal(t, make([]float64, 1000), state.UserSlope)
	assert.Equal(t, make([]float64, 1000), state.UserIntercept)
	assert.Equal(t, make([]float64, 500), state.ItemSlope)
	assert.Equal(t, make([]float64, 500), state.ItemIntercept)
	assert.Len(t, state.UserFactor, 1000*10)
	assert.Len(t, state.ItemFactor, 500*10)
	for _, factor := range [][]float64{state.UserFactor, state.ItemFactor} {
		mean, std := stat.MeanStdDev(factor, nil)
		assert.InDelta(t, 0, mean, 0.01)
		assert.InDelta(t, 0.1, std, 0.01)
	}
	assert.Len(t, state.UserFactorRow(999), 10)
	assert.Equal(t, state.ItemFactor[20:30], state.ItemFactorRow(2))
}

func TestNewTrainingState_Reproducible(t *testing.T) {
	a, err := NewTrainingState(10, 20, 3, base.NewRandomGenerator(42))
	require.NoError(t, err)
	b, err := NewTrainingState(10, 20, 3, base.NewRandomGenerator(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewTrainingState_InvalidDimension(t *testing.T) {
	for _, dims := range [][3]int{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}, {-1, 1, 1}, {1, -5, 1}, {1, 1, -2}} {
		state, err := NewTrainingState(dims[0], dims[1], dims[2], base.NewRandomGenerator(0))
		assert.Nil(t, state)
		assert.True(t, errors.Is(err, ErrInvalidDimension), dims)
	}
}

func TestTrainingState_Clone(t *testing.T) {
	state, err := NewTrainingState(3, 4, 2, base.NewRandomGenerator(0))
	require.NoError(t, err)
	clone := state.Clone()
	assert.Equal(t, state, clone)
	clone.UserSlope[0] = 1
	clone.UserFactorRow(1)[1] = math.Pi
	assert.Zero(t, state.UserSlope[0])
	assert.NotEqual(t, math.Pi, state.UserFactorRow(1)[1])
}

func TestTrainingState_CheckIndices(t *testing.T) {
	state, err := NewTrainingState(2, 3, 1, base.NewRandomGenerator(0))
	require.NoError(t, err)
	records := dataset.Records{}.Append(1, 2, 1, 1, 1)
	assert.NoError(t, state.checkIndices(records, false))
	cold := dataset.Records{}.Append(dataset.ColdStart, 0, 1, 1, 1)
	assert.True(t, errors.Is(state.checkIndices(cold, false), ErrIndexOutOfRange))
	assert.NoError(t, state.checkIndices(cold, true))
	for _, records := range []dataset.Records{
		dataset.Records{}.Append(2, 0, 1, 1, 1),
		dataset.Records{}.Append(0, 3, 1, 1, 1),
		dataset.Records{}.Append(-2, 0, 1, 1, 1),
	} {
		assert.True(t, errors.Is(state.checkIndices(records, true), ErrIndexOutOfRange))
	}
}
