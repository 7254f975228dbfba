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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gorse-io/slopemf/base"
	"github.com/gorse-io/slopemf/base/log"
	"github.com/gorse-io/slopemf/base/progress"
	"github.com/gorse-io/slopemf/config"
	"github.com/gorse-io/slopemf/dataset"
	"github.com/gorse-io/slopemf/model/mf"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCommand = &cobra.Command{
	Use:   "train",
	Short: "Train a model on a rating table and report validation scores",
	Run: func(cmd *cobra.Command, args []string) {
		conf := loadConfig(cmd)
		input, _ := cmd.Flags().GetString("input")
		metricsFile, _ := cmd.Flags().GetString("metrics-file")
		quiet, _ := cmd.Flags().GetBool("quiet")

		f, err := os.Open(input)
		if err != nil {
			log.Logger().Fatal("failed to open rating table", zap.String("input", input), zap.Error(err))
		}
		defer f.Close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		var progressOut io.Writer
		if !quiet {
			progressOut = os.Stderr
		}
		scores, err := train(ctx, conf, f, progressOut)
		if errors.Is(err, context.Canceled) {
			log.Logger().Warn("training interrupted", zap.Int("n_epochs", len(scores)))
		} else if err != nil {
			log.Logger().Fatal("failed to train model", zap.Error(err))
		}
		if err = renderScores(os.Stdout, scores); err != nil {
			log.Logger().Error("failed to render scores", zap.Error(err))
		}
		if metricsFile != "" && len(scores) > 0 {
			if err = writeMetrics(metricsFile, scores); err != nil {
				log.Logger().Fatal("failed to write metrics", zap.String("metrics_file", metricsFile), zap.Error(err))
			}
		}
	},
}

func init() {
	trainCommand.Flags().StringP("input", "i", "", "path of the rating table in CSV")
	trainCommand.Flags().String("metrics-file", "", "write final scores in Prometheus text format")
	trainCommand.Flags().BoolP("quiet", "q", false, "disable progress bar")
	_ = trainCommand.MarkFlagRequired("input")
}

type epochScore struct {
	Epoch    int
	Score    mf.Score
	Duration time.Duration
}

func newRandomGenerator(seed int64) base.RandomGenerator {
	if seed < 0 {
		return base.NewUnseededRandomGenerator()
	}
	return base.NewRandomGenerator(seed)
}

// train fits a model for a fixed number of epochs and scores it on the held-out
// records after every epoch. Cancellation of ctx is observed between epochs and the
// scores of finished epochs are returned with the error.
func train(ctx context.Context, conf *config.Config, r io.Reader, progressOut io.Writer) ([]epochScore, error) {
	params := mf.NewHyperparameters(conf.Train.GetParams())
	if err := params.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	ratings, err := dataset.LoadCSV(r, conf.Data.CSVColumns())
	if err != nil {
		return nil, errors.Trace(err)
	}
	rng := newRandomGenerator(params.RandomState)
	data, err := dataset.Build(ratings, conf.Data.TestRatio, rng)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load dataset",
		zap.Int("n_users", data.CountUsers()),
		zap.Int("n_items", data.CountItems()),
		zap.Int("n_train", data.Train.Len()),
		zap.Int("n_validation", data.Validation.Len()),
		zap.Int("n_cold_users", data.ColdUsers),
		zap.Int("n_cold_items", data.ColdItems),
		zap.Float64("global_mean", data.GlobalMean))
	testSet := data.Validation
	if testSet.Len() == 0 {
		log.Logger().Warn("empty validation set, score on training set instead")
		testSet = data.Train
	}

	state, err := mf.NewTrainingState(data.CountUsers(), data.CountItems(), params.NFactors, rng)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("fit model",
		zap.Int("n_factors", params.NFactors),
		zap.Int("n_epochs", params.NEpochs),
		zap.Float64("lr", params.Lr),
		zap.Float64("reg", params.Reg),
		zap.Int64("random_state", params.RandomState))
	scores := make([]epochScore, 0, params.NEpochs)
	for epoch := 1; epoch <= params.NEpochs; epoch++ {
		if err = ctx.Err(); err != nil {
			return scores, errors.Trace(err)
		}
		start := time.Now()
		records := mf.Shuffle(data.Train, rng)
		var reporter progress.Reporter
		var bar *progress.Bar
		if progressOut != nil {
			bar = progress.NewBar(progressOut, fmt.Sprintf("epoch %d/%d", epoch, params.NEpochs), records.Len())
			reporter = progress.NewRateLimited(bar, conf.Train.ProgressInterval)
		}
		err = mf.RunEpoch(records, state, data.GlobalMean, params.Lr, params.Reg, reporter)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return scores, errors.Annotatef(err, "epoch %d", epoch)
		}
		score, err := mf.Validate(testSet, state, data.GlobalMean, conf.Train.Jobs)
		if err != nil {
			return scores, errors.Annotatef(err, "epoch %d", epoch)
		}
		scores = append(scores, epochScore{Epoch: epoch, Score: score, Duration: time.Since(start)})
		log.Logger().Info("fit epoch",
			zap.Int("epoch", epoch),
			zap.Float64("loss", score.Loss),
			zap.Float64("rmse", score.RMSE),
			zap.Float64("mae", score.MAE),
			zap.Duration("elapsed", time.Since(start)))
	}
	return scores, nil
}

func renderScores(w io.Writer, scores []epochScore) error {
	table := tablewriter.NewWriter(w)
	table.Header("Epoch", "Loss", "RMSE", "MAE", "Time")
	for _, s := range scores {
		if err := table.Append([]string{
			strconv.Itoa(s.Epoch),
			strconv.FormatFloat(s.Score.Loss, 'f', 6, 64),
			strconv.FormatFloat(s.Score.RMSE, 'f', 6, 64),
			strconv.FormatFloat(s.Score.MAE, 'f', 6, 64),
			s.Duration.Round(time.Millisecond).String(),
		}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
