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
	"time"

	"github.com/blinklabs-io/gobits/value"
)

// Item is a single element travelling through an ordered map.
// The sequence number and input are set at creation; the output is written
// once by a worker and read by the reorder stage.
type Item struct {
	// Immutable fields (set at creation)
	sequenceNumber uint64
	input          value.Value
	receivedAt     time.Time

	mu          sync.RWMutex
	output      value.Value
	mapped      bool
	mapDuration time.Duration
}

// NewItem creates an Item for the element at position seq of the input.
func NewItem(seq uint64, input value.Value) *Item {
	return &Item{
		sequenceNumber: seq,
		input:          input,
		receivedAt:     time.Now(),
	}
}

// SequenceNumber returns the element's position in the input.
func (i *Item) SequenceNumber() uint64 {
	return i.sequenceNumber
}

// Input returns the element as read from the input.
func (i *Item) Input() value.Value {
	return i.input
}

// SetOutput records the mapped element.
func (i *Item) SetOutput(v value.Value, duration time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.output = v
	i.mapped = true
	i.mapDuration = duration
}

// Output returns the mapped element. Before SetOutput it is the zero Value.
func (i *Item) Output() value.Value {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.output
}

// IsMapped reports whether SetOutput has been called.
func (i *Item) IsMapped() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.mapped
}

// MapDuration returns the time spent in the element function.
func (i *Item) MapDuration() time.Duration {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.mapDuration
}

// TotalDuration returns the time since the item was created. Read when the
// item is released, it is the element's latency through the ordered map.
func (i *Item) TotalDuration() time.Duration {
	return time.Since(i.receivedAt)
}
