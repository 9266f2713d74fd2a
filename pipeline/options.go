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

package pipeline

import (
	"go.uber.org/zap"
)

// DefaultMaxPending is the default number of out-of-order results the reorder
// stage holds before it starts warning.
const DefaultMaxPending = 1024

// Config holds configuration for MapOrdered and Data.Map.
type Config struct {
	// Workers is the number of parallel workers running the element function.
	// Data.Map maps sequentially on the consuming goroutine when this is 1.
	Workers int
	// BufferSize is the buffer size for inter-stage channels.
	BufferSize int
	// MaxPending is the reorder buffer size above which a warning is logged.
	// Results are always held so no element is dropped.
	MaxPending int
	// Metrics receives counters for the run. May be nil.
	Metrics *Metrics
	// Logger receives debug and warning output. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:    1,
		BufferSize: 64,
		MaxPending: DefaultMaxPending,
		Logger:     zap.NewNop(),
	}
}

// Option is a functional option for configuring an ordered map.
type Option func(*Config)

// WithConfig applies a complete Config, replacing all default values.
// Options applied after WithConfig still override the config values.
func WithConfig(config Config) Option {
	return func(c *Config) {
		*c = config
		if c.Logger == nil {
			c.Logger = zap.NewNop()
		}
	}
}

// WithWorkers sets the number of workers.
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Workers = n
		}
	}
}

// WithBufferSize sets the buffer size for inter-stage channels.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.BufferSize = size
		}
	}
}

// WithMaxPending sets the reorder buffer warning threshold.
func WithMaxPending(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxPending = n
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

func newConfig(opts []Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
