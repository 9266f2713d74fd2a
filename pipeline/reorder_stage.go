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
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ReorderStage holds mapped items that arrive out of order and releases them
// in sequence order.
//
// ProcessWithStatus must be called from a single goroutine for the released
// order to be meaningful. ReorderStageRunner provides this guarantee.
type ReorderStage struct {
	maxPending int
	mu         sync.Mutex
	// pending holds out-of-order items waiting for their predecessors
	pending map[uint64]*Item
	// nextSequence is the next sequence number to release
	nextSequence uint64
}

// NewReorderStage creates a new ReorderStage. maxPending is the buffer size
// above which ProcessWithStatus reports ErrPendingLimitExceeded; 0 means no
// limit.
func NewReorderStage(maxPending int) *ReorderStage {
	return &ReorderStage{
		maxPending: maxPending,
		pending:    make(map[uint64]*Item),
	}
}

// ProcessWithStatus accepts an item and returns every item that is now
// releasable, in sequence order. If the item is out of order it is buffered
// and the returned slice is nil.
//
// ErrPendingLimitExceeded is advisory: the item is buffered regardless so no
// sequence number is ever skipped.
func (s *ReorderStage) ProcessWithStatus(ctx context.Context, item *Item) ([]*Item, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item.SequenceNumber() != s.nextSequence {
		s.pending[item.SequenceNumber()] = item
		if s.maxPending > 0 && len(s.pending) > s.maxPending {
			return nil, ErrPendingLimitExceeded
		}
		return nil, nil
	}

	released := []*Item{item}
	s.nextSequence++
	for {
		next, ok := s.pending[s.nextSequence]
		if !ok {
			break
		}
		delete(s.pending, s.nextSequence)
		s.nextSequence++
		released = append(released, next)
	}
	return released, nil
}

// PendingCount returns the number of items waiting for a predecessor.
func (s *ReorderStage) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ReorderStageRunner runs the reorder stage as a single goroutine.
// The output channel is closed when the runner exits.
type ReorderStageRunner struct {
	stage   *ReorderStage
	input   <-chan *Item
	output  chan<- *Item
	metrics *Metrics
	logger  *zap.Logger
	done    chan struct{}
	running bool
	mu      sync.Mutex
}

// NewReorderStageRunner creates a new runner for the reorder stage.
func NewReorderStageRunner(
	stage *ReorderStage,
	input <-chan *Item,
	output chan<- *Item,
	logger *zap.Logger,
) *ReorderStageRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReorderStageRunner{
		stage:  stage,
		input:  input,
		output: output,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// SetMetrics sets the metrics collector for the runner.
// Must be called before Start() to avoid data races.
func (r *ReorderStageRunner) SetMetrics(metrics *Metrics) {
	r.metrics = metrics
}

// Start starts the runner.
func (r *ReorderStageRunner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.run(ctx)
}

// Stop waits for the runner to complete. The runner exits when the context
// passed to Start is cancelled or the input channel is closed. Stop does not
// signal the runner.
func (r *ReorderStageRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	done := r.done
	r.mu.Unlock()

	<-done
}

func (r *ReorderStageRunner) run(ctx context.Context) {
	defer func() {
		close(r.output)
		r.mu.Lock()
		r.running = false
		close(r.done)
		r.mu.Unlock()
	}()

	warned := false
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-r.input:
			if !ok {
				if n := r.stage.PendingCount(); n > 0 {
					r.logger.Warn(
						"input closed with unreleased elements",
						zap.Int("pending", n),
					)
				}
				return
			}

			released, err := r.stage.ProcessWithStatus(ctx, item)
			if r.metrics != nil {
				r.metrics.UpdatePending(r.stage.PendingCount())
			}
			switch {
			case errors.Is(err, ErrPendingLimitExceeded):
				if !warned {
					r.logger.Warn(
						"reorder buffer above limit",
						zap.Int("pending", r.stage.PendingCount()),
						zap.Uint64("waiting_for", r.stage.nextSequenceNumber()),
					)
					warned = true
				}
			case err != nil:
				return
			}

			for _, p := range released {
				select {
				case r.output <- p:
				case <-ctx.Done():
					return
				}
				if r.metrics != nil {
					r.metrics.RecordEmit(p.TotalDuration())
				}
			}
		}
	}
}

func (s *ReorderStage) nextSequenceNumber() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSequence
}
