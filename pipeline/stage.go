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
	"context"
	"time"

	"github.com/blinklabs-io/gobits/value"
)

// Stage represents a processing stage in an ordered map.
type Stage interface {
	// Name returns the name of the stage for logging and metrics.
	Name() string
	// Process processes a single item. Returns an error if processing fails.
	Process(ctx context.Context, item *Item) error
}

// StageFunc is an adapter that allows using ordinary functions as Stage implementations.
type StageFunc struct {
	name string
	fn   func(ctx context.Context, item *Item) error
}

// NewStageFunc creates a new StageFunc with the given name and processing function.
func NewStageFunc(name string, fn func(ctx context.Context, item *Item) error) *StageFunc {
	return &StageFunc{
		name: name,
		fn:   fn,
	}
}

// Name returns the name of the stage.
func (s *StageFunc) Name() string {
	return s.name
}

// Process calls the underlying function.
func (s *StageFunc) Process(ctx context.Context, item *Item) error {
	return s.fn(ctx, item)
}

// NewMapStage returns a stage that applies fn to the item's input and stores
// the result as the item's output.
func NewMapStage(fn func(value.Value) value.Value) *StageFunc {
	return NewStageFunc("map", func(ctx context.Context, item *Item) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		out := fn(item.Input())
		item.SetOutput(out, time.Since(start))
		return nil
	})
}

// Stats contains statistics about an ordered map run.
type Stats struct {
	// ElementsSubmitted is the number of elements pulled from the input.
	ElementsSubmitted uint64
	// ElementsMapped is the number of elements the element function ran on.
	ElementsMapped uint64
	// ElementsEmitted is the number of elements released in input order.
	ElementsEmitted uint64
	// ErrorValues is the number of mapped elements that came out as error values.
	ErrorValues uint64

	// CurrentPending is the number of out-of-order results held for reordering.
	CurrentPending int
	// PeakPending is the maximum number of held results observed.
	PeakPending int

	// MapTime is the cumulative time spent in the element function.
	MapTime time.Duration
	// MaxLatency is the longest time an element took from submission to
	// release.
	MaxLatency time.Duration
	// LastElementTime is the time the last element was emitted.
	LastElementTime time.Time
	// StartTime is when metrics collection started.
	StartTime time.Time
}
