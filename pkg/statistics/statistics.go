/*
Copyright 2024 The Nuclio Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package statistics

import (
	"time"

	"github.com/nuclio/errors"
	"github.com/nuclio/logger"
	"github.com/prometheus/client_golang/prometheus"
)

// Statistics counts invocation outcomes and handler time. It is updated and flushed from
// the invocation loop only, so it needs no locking of its own
type Statistics struct {
	logger                           logger.Logger
	registry                         *prometheus.Registry
	textfilePath                     string
	invocations                      *prometheus.CounterVec
	handlerDurationMillisecondsSum   prometheus.Counter
	handlerDurationMillisecondsCount prometheus.Counter
}

// NewStatistics creates the collectors in a private registry. If textfilePath is set, Flush
// writes them there in the node exporter textfile format
func NewStatistics(parentLogger logger.Logger, instanceName string, textfilePath string) (*Statistics, error) {
	newStatistics := &Statistics{
		logger:       parentLogger.GetChild("statistics"),
		registry:     prometheus.NewRegistry(),
		textfilePath: textfilePath,
	}

	labels := prometheus.Labels{
		"instance": instanceName,
	}

	newStatistics.invocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "nuclio_shim_invocations_total",
		Help:        "Number of requests answered, by response status",
		ConstLabels: labels,
	}, []string{"status"})

	newStatistics.handlerDurationMillisecondsSum = prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "nuclio_shim_handler_duration_milliseconds_sum",
		Help:        "Total sum of milliseconds spent in the handler",
		ConstLabels: labels,
	})

	newStatistics.handlerDurationMillisecondsCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "nuclio_shim_handler_duration_milliseconds_count",
		Help:        "Number of measurements taken for nuclio_shim_handler_duration_milliseconds_sum",
		ConstLabels: labels,
	})

	for _, collector := range []prometheus.Collector{
		newStatistics.invocations,
		newStatistics.handlerDurationMillisecondsSum,
		newStatistics.handlerDurationMillisecondsCount,
	} {
		if err := newStatistics.registry.Register(collector); err != nil {
			return nil, errors.Wrap(err, "Failed to register collector")
		}
	}

	return newStatistics, nil
}

// Observe records one answered request. Handler time is recorded only if the handler ran
func (s *Statistics) Observe(status string, handlerDuration time.Duration, handlerInvoked bool) {
	s.invocations.WithLabelValues(status).Inc()

	if handlerInvoked {
		s.handlerDurationMillisecondsSum.Add(float64(handlerDuration) / float64(time.Millisecond))
		s.handlerDurationMillisecondsCount.Inc()
	}
}

// Flush writes the current values to the textfile, if one was configured
func (s *Statistics) Flush() error {
	if s.textfilePath == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(s.textfilePath, s.registry); err != nil {
		return errors.Wrapf(err, "Failed to write statistics to %s", s.textfilePath)
	}

	return nil
}

// GetGatherer returns the registry holding the collectors
func (s *Statistics) GetGatherer() prometheus.Gatherer {
	return s.registry
}
