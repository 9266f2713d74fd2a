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
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// MetricsRecorder is a function that records metrics for a processed item.
// It receives the item that was processed and the error (if any) from processing.
type MetricsRecorder func(item *Item, err error)

// StageWorkerPool runs multiple workers in parallel for a given stage.
type StageWorkerPool struct {
	stage         Stage
	numWorkers    int
	input         <-chan *Item
	output        chan<- *Item
	recordMetrics MetricsRecorder
	group         errgroup.Group
	started       atomic.Bool
}

// StageWorkerPoolConfig holds configuration for creating a StageWorkerPool.
type StageWorkerPoolConfig struct {
	// Stage is the processing stage to use (required, panics if nil).
	Stage Stage
	// NumWorkers is the number of parallel workers; defaults to 1 if <= 0.
	NumWorkers int
	// Input is the channel to receive items from.
	Input <-chan *Item
	// Output is the channel to send processed items to.
	Output chan<- *Item
	// RecordMetrics is called after processing to record metrics.
	// If nil, no metrics are recorded.
	RecordMetrics MetricsRecorder
}

// NewStageWorkerPool creates a new worker pool for the given stage.
//
// Note: If input or output channels are nil, workers will block until the
// context passed to Start is cancelled.
func NewStageWorkerPool(config StageWorkerPoolConfig) *StageWorkerPool {
	if config.Stage == nil {
		panic(ErrNilStage)
	}
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &StageWorkerPool{
		stage:         config.Stage,
		numWorkers:    numWorkers,
		input:         config.Input,
		output:        config.Output,
		recordMetrics: config.RecordMetrics,
	}
}

// Start starts the worker pool. Call Stop to wait for completion.
// Calling it more than once has no effect.
func (p *StageWorkerPool) Start(ctx context.Context) {
	if p.started.Swap(true) {
		return
	}
	for range p.numWorkers {
		p.group.Go(func() error {
			return p.worker(ctx)
		})
	}
}

// Stop waits for all workers to complete. Workers exit when the input channel
// is closed or the context is cancelled. Stop returns the first stage error
// other than cancellation.
func (p *StageWorkerPool) Stop() error {
	return p.group.Wait()
}

func (p *StageWorkerPool) worker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case item, ok := <-p.input:
			if !ok {
				return nil
			}

			err := p.stage.Process(ctx, item)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			if err != nil {
				return err
			}
			if p.recordMetrics != nil {
				p.recordMetrics(item, err)
			}

			select {
			case p.output <- item:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// MapMetricsRecorder returns a MetricsRecorder for the map stage.
func MapMetricsRecorder(metrics *Metrics) MetricsRecorder {
	if metrics == nil {
		return nil
	}
	return func(item *Item, err error) {
		if err != nil || !item.IsMapped() {
			return
		}
		metrics.RecordMap(item.MapDuration(), item.Output().IsError())
	}
}
