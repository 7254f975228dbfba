// Copyright 2020 gorse Project Authors
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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorse-io/slopemf/model"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestLoadConfig_Default(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[data]
user_column = "user"
item_column = "item"
rating_column = "stars"
test_ratio = 0.2

[split]
keys = ["user", "item", "stars", "time"]
jobs = 4

[train]
n_factors = 8
n_epochs = 3
lr = 0.01
reg = 0.1
random_state = 42
jobs = 2
progress_interval = "1s"
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)
	// [data]
	assert.Equal(t, "user", config.Data.UserColumn)
	assert.Equal(t, "item", config.Data.ItemColumn)
	assert.Equal(t, "stars", config.Data.RatingColumn)
	assert.Equal(t, 0.2, config.Data.TestRatio)
	// [split]
	assert.Equal(t, []string{"user", "item", "stars", "time"}, config.Split.Keys)
	assert.Equal(t, 4, config.Split.Jobs)
	assert.Equal(t, 1024, config.Split.ChunkSize)
	// [train]
	assert.Equal(t, 8, config.Train.NFactors)
	assert.Equal(t, 3, config.Train.NEpochs)
	assert.Equal(t, 0.01, config.Train.Lr)
	assert.Equal(t, 0.1, config.Train.Reg)
	assert.Equal(t, int64(42), config.Train.RandomState)
	assert.Equal(t, 2, config.Train.Jobs)
	assert.Equal(t, time.Second, config.Train.ProgressInterval)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("SLOPEMF_TRAIN_LR", "0.05")
	t.Setenv("SLOPEMF_TRAIN_N_EPOCHS", "7")
	t.Setenv("SLOPEMF_SPLIT_KEYS", "a,b")
	t.Setenv("SLOPEMF_TRAIN_PROGRESS_INTERVAL", "2s")
	path := writeConfig(t, `
[train]
lr = 0.01
n_epochs = 3
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.05, config.Train.Lr)
	assert.Equal(t, 7, config.Train.NEpochs)
	assert.Equal(t, []string{"a", "b"}, config.Split.Keys)
	assert.Equal(t, 2*time.Second, config.Train.ProgressInterval)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for _, text := range []string{
		"[train]\nlr = 0.0\n",
		"[train]\nreg = -1.0\n",
		"[train]\nn_factors = 0\n",
		"[data]\ntest_ratio = 1.0\n",
		"[data]\nuser_column = \"\"\n",
		"[split]\nkeys = []\n",
		"[split]\nchunk_size = 0\n",
	} {
		_, err := LoadConfig(writeConfig(t, text))
		assert.True(t, errors.Is(err, errors.NotValid), text)
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestTrainConfig_GetParams(t *testing.T) {
	config := GetDefaultConfig()
	config.Train.RandomState = -1
	params := config.Train.GetParams()
	assert.Equal(t, 100, params.GetInt(model.NFactors, 0))
	assert.Equal(t, 20, params.GetInt(model.NEpochs, 0))
	assert.Equal(t, 0.005, params.GetFloat64(model.Lr, 0))
	assert.Equal(t, 0.02, params.GetFloat64(model.Reg, 0))
	assert.Equal(t, int64(-1), params.GetInt64(model.RandomState, 0))
}

func TestDataConfig_CSVColumns(t *testing.T) {
	config := GetDefaultConfig()
	columns := config.Data.CSVColumns()
	assert.Equal(t, "reviewerID", columns.User)
	assert.Equal(t, "asin", columns.Item)
	assert.Equal(t, "overall", columns.Rating)

	split := config.Split.GetSplitConfig()
	split.Keys[0] = "changed"
	assert.Equal(t, "reviewerID", config.Split.Keys[0])
	assert.Equal(t, 16, split.Jobs)
	assert.Equal(t, 1024, split.ChunkSize)
}
