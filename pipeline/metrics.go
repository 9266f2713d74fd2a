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
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks counters for an ordered map.
// Uses atomic counters for thread-safe operation. A single Metrics may be
// shared by several runs; the counters accumulate.
type Metrics struct {
	// Counters (atomic)
	elementsSubmitted atomic.Uint64
	elementsMapped    atomic.Uint64
	elementsEmitted   atomic.Uint64
	errorValues       atomic.Uint64
	mapNanos          atomic.Int64

	// Pending tracking (requires mutex)
	mu             sync.RWMutex
	currentPending int
	peakPending    int

	// Timing
	lastElementTime time.Time
	startTime       time.Time
	maxLatency      time.Duration
}

// NewMetrics creates a new Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// RecordSubmit increments the submitted counter.
func (m *Metrics) RecordSubmit() {
	m.elementsSubmitted.Add(1)
}

// RecordMap records one run of the element function. isError reports whether
// the result was an error value.
func (m *Metrics) RecordMap(duration time.Duration, isError bool) {
	m.elementsMapped.Add(1)
	m.mapNanos.Add(int64(duration))
	if isError {
		m.errorValues.Add(1)
	}
}

// RecordEmit records an element released in input order. latency is the
// time from submission to release.
func (m *Metrics) RecordEmit(latency time.Duration) {
	m.elementsEmitted.Add(1)
	m.mu.Lock()
	m.lastElementTime = time.Now()
	if latency > m.maxLatency {
		m.maxLatency = latency
	}
	m.mu.Unlock()
}

// UpdatePending updates the reorder buffer depth tracking.
func (m *Metrics) UpdatePending(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentPending = depth
	if depth > m.peakPending {
		m.peakPending = depth
	}
}

// Stats returns a snapshot of the current metrics.
func (m *Metrics) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		ElementsSubmitted: m.elementsSubmitted.Load(),
		ElementsMapped:    m.elementsMapped.Load(),
		ElementsEmitted:   m.elementsEmitted.Load(),
		ErrorValues:       m.errorValues.Load(),
		CurrentPending:    m.currentPending,
		PeakPending:       m.peakPending,
		MapTime:           time.Duration(m.mapNanos.Load()),
		MaxLatency:        m.maxLatency,
		LastElementTime:   m.lastElementTime,
		StartTime:         m.startTime,
	}
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.elementsSubmitted.Store(0)
	m.elementsMapped.Store(0)
	m.elementsEmitted.Store(0)
	m.errorValues.Store(0)
	m.mapNanos.Store(0)

	m.mu.Lock()
	m.currentPending = 0
	m.peakPending = 0
	m.lastElementTime = time.Time{}
	m.maxLatency = 0
	m.startTime = time.Now()
	m.mu.Unlock()
}
