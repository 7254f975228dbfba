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

package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/gorse-io/slopemf/base/log"
	"github.com/gorse-io/slopemf/base/progress"
	"github.com/gorse-io/slopemf/dataset"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var splitCommand = &cobra.Command{
	Use:   "split",
	Short: "Extract a rating table from a JSON lines corpus",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		input, _ := cmd.Flags().GetString("input")
		output, _ := cmd.Flags().GetString("output")
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		start := time.Now()
		var progressOut io.Writer
		if !quiet {
			progressOut = os.Stderr
		}
		n, err := splitFile(ctx, input, output, conf.Split.GetSplitConfig(), progressOut)
		if err != nil {
			log.Logger().Fatal("failed to split corpus", zap.String("input", input), zap.Error(err))
		}
		log.Logger().Info("split corpus",
			zap.String("input", input),
			zap.String("output", output),
			zap.Int("n_rows", n),
			zap.Duration("elapsed", time.Since(start)))
	},
}

func init() {
	splitCommand.Flags().StringP("input", "i", "", "path of the JSON lines corpus")
	splitCommand.Flags().StringP("output", "o", "", "path of the CSV file to write")
	splitCommand.Flags().BoolP("quiet", "q", false, "disable progress bar")
	_ = splitCommand.MarkFlagRequired("input")
	_ = splitCommand.MarkFlagRequired("output")
}

// splitFile extracts cfg.Keys from every line of input into a CSV file at output.
func splitFile(ctx context.Context, input, output string, cfg dataset.SplitConfig, progressOut io.Writer) (int, error) {
	in, err := os.Open(input)
	if err != nil {
		return 0, errors.Trace(err)
	}
	defer in.Close()
	out, err := os.Create(output)
	if err != nil {
		return 0, errors.Trace(err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	var reporter progress.Reporter
	if progressOut != nil {
		bar := progress.NewBar(progressOut, "split", -1)
		defer bar.Finish()
		reporter = bar
	}
	n, err := dataset.Split(ctx, in, w, cfg, reporter)
	if err != nil {
		return n, errors.Trace(err)
	}
	if err = w.Flush(); err != nil {
		return n, errors.Trace(err)
	}
	return n, errors.Trace(out.Sync())
}
