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
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const LabelMetric = "metric"

// writeMetrics exports the scores of the last epoch to a file in the Prometheus text
// format, to be picked up by the node exporter textfile collector.
func writeMetrics(path string, scores []epochScore) error {
	if len(scores) == 0 {
		return errors.NotValidf("empty scores")
	}
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	epochs := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "slopemf",
		Subsystem: "train",
		Name:      "epochs_total",
	})
	seconds := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "slopemf",
		Subsystem: "train",
		Name:      "seconds",
	})
	scoreVec := factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "slopemf",
		Subsystem: "validation",
		Name:      "score",
	}, []string{LabelMetric})

	last := scores[len(scores)-1]
	epochs.Set(float64(last.Epoch))
	for _, s := range scores {
		seconds.Add(s.Duration.Seconds())
	}
	scoreVec.WithLabelValues("loss").Set(last.Score.Loss)
	scoreVec.WithLabelValues("rmse").Set(last.Score.RMSE)
	scoreVec.WithLabelValues("mae").Set(last.Score.MAE)
	return errors.Trace(prometheus.WriteToTextfile(path, registry))
}
