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
	"github.com/gorse-io/slopemf/model"
	"github.com/juju/errors"
)

// Hyperparameters of a training session.
type Hyperparameters struct {
	NFactors    int
	NEpochs     int
	Lr          float64
	Reg         float64
	RandomState int64
}

// NewHyperparameters reads hyper-parameters from params. Defaults:
//
//	NFactors	- 100
//	NEpochs		- 20
//	Lr			- 0.005
//	Reg			- 0.02
//	RandomState	- 0
func NewHyperparameters(params model.Params) Hyperparameters {
	return Hyperparameters{
		NFactors:    params.GetInt(model.NFactors, 100),
		NEpochs:     params.GetInt(model.NEpochs, 20),
		Lr:          params.GetFloat64(model.Lr, 0.005),
		Reg:         params.GetFloat64(model.Reg, 0.02),
		RandomState: params.GetInt64(model.RandomState, 0),
	}
}

func (h Hyperparameters) Validate() error {
	if h.NFactors <= 0 {
		return errors.Annotatef(ErrInvalidDimension, "n_factors=%d", h.NFactors)
	}
	if h.NEpochs <= 0 {
		return errors.NotValidf("n_epochs=%d", h.NEpochs)
	}
	if !(h.Lr > 0) {
		return errors.NotValidf("lr=%v", h.Lr)
	}
	if !(h.Reg >= 0) {
		return errors.NotValidf("reg=%v", h.Reg)
	}
	return nil
}
