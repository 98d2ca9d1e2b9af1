// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "userform"

type metrics struct {
	validations       *prometheus.CounterVec
	issues            *prometheus.CounterVec
	duration          prometheus.Histogram
	sinkFailures      prometheus.Counter
	submissionsActive prometheus.Gauge
	submissionWaits   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Total number of validated candidates by outcome",
		}, []string{"outcome"}),
		issues: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Total number of validation issues by field path and code",
		}, []string{"path", "code"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating a candidate",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		sinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_failures_total",
			Help:      "Total number of validated users the sink failed to receive",
		}),
		submissionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "submissions_in_flight",
			Help:      "Number of submissions currently holding a form guard",
		}),
		submissionWaits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_waits_total",
			Help:      "Total number of submissions which waited on an in flight submission for the same form",
		}),
	}
}
