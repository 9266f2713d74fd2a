// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry exposes gobits run statistics as Prometheus metrics and
// writes them in the text exposition format for node_exporter's textfile
// collector.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/blinklabs-io/gobits/pipeline"
	"github.com/blinklabs-io/gobits/value"
)

// Metrics holds the Prometheus metrics for one gobits run.
//
// Metrics:
//   - gobits_elements_total{command} - elements written to the output
//   - gobits_error_values_total{command,kind} - error elements written, by kind
//   - gobits_map_elements_submitted_total - elements pulled by the ordered mapper
//   - gobits_map_elements_emitted_total - elements released in input order
//   - gobits_map_peak_pending - largest reorder buffer observed
//   - gobits_map_seconds_total - time spent in the element function
//   - gobits_map_max_latency_seconds - longest submission to release time
type Metrics struct {
	registry *prometheus.Registry

	ElementsTotal    *prometheus.CounterVec
	ErrorValuesTotal *prometheus.CounterVec
}

// New registers the metrics on a fresh registry. The pipeline counters are
// read from m on each gather; m may be nil.
func New(m *pipeline.Metrics) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	ret := &Metrics{
		registry: reg,
		ElementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobits_elements_total",
				Help: "Total number of elements written to the output",
			},
			[]string{"command"},
		),
		ErrorValuesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobits_error_values_total",
				Help: "Total number of error elements written to the output",
			},
			[]string{"command", "kind"},
		),
	}

	if m != nil {
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "gobits_map_elements_submitted_total",
				Help: "Total number of elements pulled from the input by the ordered mapper",
			},
			func() float64 { return float64(m.Stats().ElementsSubmitted) },
		)
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "gobits_map_elements_emitted_total",
				Help: "Total number of elements released in input order",
			},
			func() float64 { return float64(m.Stats().ElementsEmitted) },
		)
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "gobits_map_peak_pending",
				Help: "Largest number of out-of-order results held for reordering",
			},
			func() float64 { return float64(m.Stats().PeakPending) },
		)
		factory.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "gobits_map_seconds_total",
				Help: "Total time spent in the element function",
			},
			func() float64 { return m.Stats().MapTime.Seconds() },
		)
		factory.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "gobits_map_max_latency_seconds",
				Help: "Longest time an element took from submission to release",
			},
			func() float64 { return m.Stats().MaxLatency.Seconds() },
		)
	}

	return ret
}

// RecordOutput counts an element written by command.
func (m *Metrics) RecordOutput(command string, v value.Value) {
	m.ElementsTotal.WithLabelValues(command).Inc()
	if shellErr, ok := v.AsError(); ok {
		kind := string(value.GenericError)
		if shellErr != nil {
			kind = string(shellErr.Kind)
		}
		m.ErrorValuesTotal.WithLabelValues(command, kind).Inc()
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
