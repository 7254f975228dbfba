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
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/slopemf/dataset"
	"github.com/gorse-io/slopemf/model"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// Config is the configuration for slopemf.
type Config struct {
	Data  DataConfig  `mapstructure:"data"`
	Split SplitConfig `mapstructure:"split"`
	Train TrainConfig `mapstructure:"train"`
}

// DataConfig describes the rating table consumed by training.
type DataConfig struct {
	UserColumn   string  `mapstructure:"user_column" validate:"required"`
	ItemColumn   string  `mapstructure:"item_column" validate:"required"`
	RatingColumn string  `mapstructure:"rating_column" validate:"required"`
	TestRatio    float64 `mapstructure:"test_ratio" validate:"gte=0,lt=1"`
}

// SplitConfig configures extraction of a JSON-lines corpus into a rating table.
type SplitConfig struct {
	Keys      []string `mapstructure:"keys" validate:"required,min=1,dive,required"`
	Jobs      int      `mapstructure:"jobs" validate:"gte=1"`
	ChunkSize int      `mapstructure:"chunk_size" validate:"gte=1"`
}

// TrainConfig holds hyper-parameters and runtime options of training.
type TrainConfig struct {
	NFactors         int           `mapstructure:"n_factors" validate:"gt=0"`
	NEpochs          int           `mapstructure:"n_epochs" validate:"gt=0"`
	Lr               float64       `mapstructure:"lr" validate:"gt=0"`
	Reg              float64       `mapstructure:"reg" validate:"gte=0"`
	RandomState      int64         `mapstructure:"random_state"` // negative for a time-based seed
	Jobs             int           `mapstructure:"jobs" validate:"gte=1"`
	ProgressInterval time.Duration `mapstructure:"progress_interval" validate:"gte=0"`
}

func GetDefaultConfig() *Config {
	columns := dataset.DefaultCSVColumns()
	return &Config{
		Data: DataConfig{
			UserColumn:   columns.User,
			ItemColumn:   columns.Item,
			RatingColumn: columns.Rating,
			TestRatio:    0.1,
		},
		Split: SplitConfig{
			Keys:      []string{columns.User, columns.Item, columns.Rating},
			Jobs:      16,
			ChunkSize: 1024,
		},
		Train: TrainConfig{
			NFactors:         100,
			NEpochs:          20,
			Lr:               0.005,
			Reg:              0.02,
			RandomState:      0,
			Jobs:             1,
			ProgressInterval: 100 * time.Millisecond,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [data]
	v.SetDefault("data.user_column", defaultConfig.Data.UserColumn)
	v.SetDefault("data.item_column", defaultConfig.Data.ItemColumn)
	v.SetDefault("data.rating_column", defaultConfig.Data.RatingColumn)
	v.SetDefault("data.test_ratio", defaultConfig.Data.TestRatio)
	// [split]
	v.SetDefault("split.keys", defaultConfig.Split.Keys)
	v.SetDefault("split.jobs", defaultConfig.Split.Jobs)
	v.SetDefault("split.chunk_size", defaultConfig.Split.ChunkSize)
	// [train]
	v.SetDefault("train.n_factors", defaultConfig.Train.NFactors)
	v.SetDefault("train.n_epochs", defaultConfig.Train.NEpochs)
	v.SetDefault("train.lr", defaultConfig.Train.Lr)
	v.SetDefault("train.reg", defaultConfig.Train.Reg)
	v.SetDefault("train.random_state", defaultConfig.Train.RandomState)
	v.SetDefault("train.jobs", defaultConfig.Train.Jobs)
	v.SetDefault("train.progress_interval", defaultConfig.Train.ProgressInterval)
}

// LoadConfig loads configuration from a TOML file. Keys absent from the file fall back
// to defaults. SLOPEMF_<SECTION>_<KEY> environment variables override both.
// An empty path loads defaults and environment variables only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetEnvPrefix("slopemf")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

func (config *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}

// CSVColumns returns the header names of the rating table.
func (config *DataConfig) CSVColumns() dataset.CSVColumns {
	return dataset.CSVColumns{
		User:   config.UserColumn,
		Item:   config.ItemColumn,
		Rating: config.RatingColumn,
	}
}

func (config *SplitConfig) GetSplitConfig() dataset.SplitConfig {
	return dataset.SplitConfig{
		Keys:      append([]string(nil), config.Keys...),
		Jobs:      config.Jobs,
		ChunkSize: config.ChunkSize,
	}
}

// GetParams returns hyper-parameters of the model.
func (config *TrainConfig) GetParams() model.Params {
	return model.Params{
		model.NFactors:    config.NFactors,
		model.NEpochs:     config.NEpochs,
		model.Lr:          config.Lr,
		model.Reg:         config.Reg,
		model.RandomState: config.RandomState,
	}
}
