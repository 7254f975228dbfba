// Copyright 2022 gorse Project Authors
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

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		path := filepath.Join(t.TempDir(), "slopemf.log")
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		AddFlags(flagSet)
		require.NoError(t, flagSet.Parse([]string{"--log-path", path}))
		SetLogger(flagSet, debug)
		Logger().Info("hello", zap.Bool("debug", debug))
		_ = Logger().Sync()
		data, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	}
}

func TestSetLoggerWithoutFile(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	SetLogger(flagSet, false)
	assert.NotNil(t, Logger())
	assert.False(t, Logger().Core().Enabled(zap.DebugLevel))
	CloseLogger()
	assert.False(t, Logger().Core().Enabled(zap.ErrorLevel))
}
