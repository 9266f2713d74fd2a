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
	"iter"

	"go.uber.org/zap"

	"github.com/blinklabs-io/gobits/value"
)

// MapOrdered returns a sequence applying fn to each element of seq on a pool
// of workers. Results are reassembled by sequence number, so the output order
// equals the input order regardless of which worker finishes first.
//
// fn must be safe for concurrent use. The input is drained on its own
// goroutine; when ctx is cancelled or the consumer stops early, that
// goroutine exits at the next element boundary of seq. Cancellation yields a
// prefix of the full output.
func MapOrdered(ctx context.Context, seq iter.Seq[value.Value], fn func(value.Value) value.Value, opts ...Option) iter.Seq[value.Value] {
	cfg := newConfig(opts)
	return func(yield func(value.Value) bool) {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		submit := make(chan *Item, cfg.BufferSize)
		mapped := make(chan *Item, cfg.BufferSize)
		results := make(chan *Item, cfg.BufferSize)

		pool := NewStageWorkerPool(StageWorkerPoolConfig{
			Stage:         NewMapStage(fn),
			NumWorkers:    cfg.Workers,
			Input:         submit,
			Output:        mapped,
			RecordMetrics: MapMetricsRecorder(cfg.Metrics),
		})
		runner := NewReorderStageRunner(
			NewReorderStage(cfg.MaxPending),
			mapped,
			results,
			cfg.Logger,
		)
		runner.SetMetrics(cfg.Metrics)

		pool.Start(runCtx)
		runner.Start(runCtx)

		go func() {
			defer close(submit)
			var seqNum uint64
			for v := range seq {
				select {
				case submit <- NewItem(seqNum, v):
				case <-runCtx.Done():
					return
				}
				if cfg.Metrics != nil {
					cfg.Metrics.RecordSubmit()
				}
				seqNum++
			}
		}()

		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			if err := pool.Stop(); err != nil {
				cfg.Logger.Error("map worker failed", zap.Error(err))
			}
			close(mapped)
		}()

		defer func() {
			cancel()
			<-stopped
			runner.Stop()
			if cfg.Metrics != nil {
				stats := cfg.Metrics.Stats()
				cfg.Logger.Debug(
					"ordered map finished",
					zap.Uint64("submitted", stats.ElementsSubmitted),
					zap.Uint64("emitted", stats.ElementsEmitted),
					zap.Uint64("error_values", stats.ErrorValues),
					zap.Int("peak_pending", stats.PeakPending),
					zap.Duration("max_latency", stats.MaxLatency),
				)
			}
		}()

		for {
			select {
			case <-runCtx.Done():
				return
			case item, ok := <-results:
				if !ok {
					return
				}
				if runCtx.Err() != nil {
					return
				}
				if !yield(item.Output()) {
					return
				}
			}
		}
	}
}
