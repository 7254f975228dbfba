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

// Package mf trains a biased matrix factorization whose user and item biases are
// linear in the entity's mean rating:
//
//	\hat{r}_{ui} = μ + k_u (m_u - μ) + c_u + k_i (m_i - μ) + c_i + q_i^Tp_u
//
// where m_u and m_i are covariates carried by every record. Parameters are updated
// in place by stochastic gradient descent, one record at a time.
package mf

import "github.com/juju/errors"

const (
	// ErrInvalidDimension is returned when a parameter array would have a
	// non-positive dimension.
	ErrInvalidDimension = errors.ConstError("invalid dimension")
	// ErrIndexOutOfRange is returned when a record refers to a user or item without
	// parameters.
	ErrIndexOutOfRange = errors.ConstError("index out of range")
	// ErrEmptyInput is returned when a pass is asked to consume zero records.
	ErrEmptyInput = errors.ConstError("empty input")
)
