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
	"iter"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blinklabs-io/gobits/value"
)

func intValue(n int64) value.Value {
	return value.Int(n, value.UnknownSpan)
}

func intsOf(t *testing.T, vals []value.Value) []int64 {
	t.Helper()
	out := make([]int64, 0, len(vals))
	for _, v := range vals {
		n, ok := v.AsInt()
		require.True(t, ok, "expected int, got %s", v.Type())
		out = append(out, n)
	}
	return out
}

func seqOf(ns ...int64) iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for _, n := range ns {
			if !yield(intValue(n)) {
				return
			}
		}
	}
}

// naturals is an unbounded stream 0, 1, 2, ...
func naturals() iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for i := int64(0); ; i++ {
			if !yield(intValue(i)) {
				return
			}
		}
	}
}

func double(v value.Value) value.Value {
	n, ok := v.AsInt()
	if !ok {
		return value.Error(value.NewError(value.UnsupportedInput, "not an int", v.Span()))
	}
	return value.Int(n*2, v.Span())
}

func collect(seq iter.Seq[value.Value]) []value.Value {
	var out []value.Value
	for v := range seq {
		out = append(out, v)
	}
	return out
}

// ============================================================================
// Item tests
// ============================================================================

func TestItem_NewItem(t *testing.T) {
	item := NewItem(7, intValue(3))
	assert.Equal(t, uint64(7), item.SequenceNumber())
	n, ok := item.Input().AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(3), n)
	assert.False(t, item.IsMapped())
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, item.TotalDuration(), time.Millisecond)
}

func TestItem_SetOutput(t *testing.T) {
	item := NewItem(0, intValue(3))
	item.SetOutput(intValue(6), time.Millisecond)
	assert.True(t, item.IsMapped())
	assert.Equal(t, time.Millisecond, item.MapDuration())
	n, _ := item.Output().AsInt()
	assert.Equal(t, int64(6), n)
}

func TestItem_ThreadSafety(t *testing.T) {
	item := NewItem(0, intValue(1))
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			item.SetOutput(intValue(int64(i)), time.Duration(i))
		}()
		go func() {
			defer wg.Done()
			_ = item.Output()
			_ = item.IsMapped()
			_ = item.MapDuration()
		}()
	}
	wg.Wait()
	assert.True(t, item.IsMapped())
}

// ============================================================================
// StageFunc tests
// ============================================================================

func TestStageFunc_NameAndProcess(t *testing.T) {
	item := NewItem(1, intValue(1))
	processedItems := 0

	stage := NewStageFunc("test-stage", func(ctx context.Context, item *Item) error {
		processedItems++
		return nil
	})

	assert.Equal(t, "test-stage", stage.Name())
	err := stage.Process(context.Background(), item)
	assert.NoError(t, err)
	assert.Equal(t, 1, processedItems)
}

func TestStageFunc_ErrorHandling(t *testing.T) {
	expectedErr := errors.New("stage failed")
	stage := NewStageFunc("error-stage", func(ctx context.Context, item *Item) error {
		return expectedErr
	})
	err := stage.Process(context.Background(), NewItem(1, intValue(1)))
	assert.Equal(t, expectedErr, err)
}

func TestMapStage_SetsOutput(t *testing.T) {
	stage := NewMapStage(double)
	item := NewItem(0, intValue(21))
	require.NoError(t, stage.Process(context.Background(), item))
	require.True(t, item.IsMapped())
	n, _ := item.Output().AsInt()
	assert.Equal(t, int64(42), n)
}

func TestMapStage_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	item := NewItem(0, intValue(21))
	err := NewMapStage(double).Process(ctx, item)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, item.IsMapped())
}

// ============================================================================
// StageWorkerPool tests
// ============================================================================

func TestStageWorkerPool_MultipleWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)
	const numItems = 20
	const numWorkers = 4

	input := make(chan *Item, numItems)
	output := make(chan *Item, numItems)
	for i := range numItems {
		input <- NewItem(uint64(i), intValue(int64(i)))
	}
	close(input)

	metrics := NewMetrics()
	pool := NewStageWorkerPool(StageWorkerPoolConfig{
		Stage:         NewMapStage(double),
		NumWorkers:    numWorkers,
		Input:         input,
		Output:        output,
		RecordMetrics: MapMetricsRecorder(metrics),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool.Start(ctx)
	require.NoError(t, pool.Stop())
	close(output)

	seen := make(map[uint64]bool)
	for item := range output {
		require.True(t, item.IsMapped())
		n, _ := item.Output().AsInt()
		assert.Equal(t, int64(item.SequenceNumber())*2, n)
		seen[item.SequenceNumber()] = true
	}
	assert.Len(t, seen, numItems)
	assert.Equal(t, uint64(numItems), metrics.Stats().ElementsMapped)
}

func TestStageWorkerPool_CleanShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)
	input := make(chan *Item, 10)
	output := make(chan *Item, 10)

	pool := NewStageWorkerPool(StageWorkerPoolConfig{
		Stage:      NewMapStage(double),
		NumWorkers: 3,
		Input:      input,
		Output:     output,
	})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		_ = pool.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Pool did not shut down cleanly within timeout")
	}
}

func TestStageWorkerPool_StageErrorReturnedFromStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	input := make(chan *Item, 1)
	output := make(chan *Item, 1)
	expectedErr := errors.New("stage failed")

	pool := NewStageWorkerPool(StageWorkerPoolConfig{
		Stage: NewStageFunc("fail", func(ctx context.Context, item *Item) error {
			return expectedErr
		}),
		Input:  input,
		Output: output,
	})
	input <- NewItem(0, intValue(1))
	close(input)

	pool.Start(context.Background())
	assert.ErrorIs(t, pool.Stop(), expectedErr)
	assert.Empty(t, output)
}

func TestStageWorkerPool_NumWorkersValidation(t *testing.T) {
	for _, n := range []int{-1, 0} {
		pool := NewStageWorkerPool(StageWorkerPoolConfig{
			Stage:      NewMapStage(double),
			NumWorkers: n,
		})
		assert.Equal(t, 1, pool.numWorkers)
	}
	assert.PanicsWithValue(t, ErrNilStage, func() {
		NewStageWorkerPool(StageWorkerPoolConfig{})
	})
}

// ============================================================================
// ReorderStage tests
// ============================================================================

func TestReorderStage_OutOfOrderReordering(t *testing.T) {
	stage := NewReorderStage(0)
	var released []uint64

	// Process items in scrambled order: 2, 0, 4, 1, 3
	for _, seq := range []uint64{2, 0, 4, 1, 3} {
		items, err := stage.ProcessWithStatus(context.Background(), NewItem(seq, intValue(int64(seq))))
		require.NoError(t, err)
		for _, item := range items {
			released = append(released, item.SequenceNumber())
		}
	}

	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, released)
	assert.Equal(t, 0, stage.PendingCount())
}

func TestReorderStage_PendingCount(t *testing.T) {
	stage := NewReorderStage(0)
	ctx := context.Background()

	for _, seq := range []uint64{3, 2, 1} {
		items, err := stage.ProcessWithStatus(ctx, NewItem(seq, intValue(0)))
		require.NoError(t, err)
		assert.Nil(t, items)
	}
	assert.Equal(t, 3, stage.PendingCount())

	items, err := stage.ProcessWithStatus(ctx, NewItem(0, intValue(0)))
	require.NoError(t, err)
	assert.Len(t, items, 4)
	assert.Equal(t, 0, stage.PendingCount())
}

func TestReorderStage_PendingLimitExceeded(t *testing.T) {
	stage := NewReorderStage(2)
	ctx := context.Background()

	_, err := stage.ProcessWithStatus(ctx, NewItem(1, intValue(0)))
	require.NoError(t, err)
	_, err = stage.ProcessWithStatus(ctx, NewItem(2, intValue(0)))
	require.NoError(t, err)
	_, err = stage.ProcessWithStatus(ctx, NewItem(3, intValue(0)))
	assert.ErrorIs(t, err, ErrPendingLimitExceeded)

	// The item over the limit is still held, so nothing is skipped
	items, err := stage.ProcessWithStatus(ctx, NewItem(0, intValue(0)))
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestReorderStage_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	items, err := NewReorderStage(0).ProcessWithStatus(ctx, NewItem(0, intValue(0)))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, items)
}

func TestReorderStageRunner_OutOfOrderItemsForwarded(t *testing.T) {
	defer goleak.VerifyNone(t)
	input := make(chan *Item, 10)
	output := make(chan *Item, 10)

	metrics := NewMetrics()
	runner := NewReorderStageRunner(NewReorderStage(0), input, output, nil)
	runner.SetMetrics(metrics)
	runner.Start(context.Background())

	for _, seq := range []uint64{4, 3, 2, 1, 0} {
		input <- NewItem(seq, intValue(int64(seq)))
	}
	close(input)
	runner.Stop()

	var got []uint64
	for item := range output {
		got = append(got, item.SequenceNumber())
	}
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, got)

	stats := metrics.Stats()
	assert.Equal(t, uint64(5), stats.ElementsEmitted)
	assert.Equal(t, 4, stats.PeakPending)
	assert.Equal(t, 0, stats.CurrentPending)
	assert.Positive(t, stats.MaxLatency)
}

func TestReorderStageRunner_WarnsAbovePendingLimit(t *testing.T) {
	defer goleak.VerifyNone(t)
	core, logs := observer.New(zapcore.WarnLevel)
	input := make(chan *Item, 10)
	output := make(chan *Item, 10)

	runner := NewReorderStageRunner(NewReorderStage(1), input, output, zap.New(core))
	runner.Start(context.Background())

	for _, seq := range []uint64{3, 2, 1, 0} {
		input <- NewItem(seq, intValue(int64(seq)))
	}
	close(input)
	runner.Stop()

	count := 0
	for range output {
		count++
	}
	assert.Equal(t, 4, count)
	assert.Equal(t, 1, logs.FilterMessage("reorder buffer above limit").Len())
}

// ============================================================================
// Metrics tests
// ============================================================================

func TestMetrics_StatsAndReset(t *testing.T) {
	m := NewMetrics()
	m.RecordSubmit()
	m.RecordSubmit()
	m.RecordMap(time.Millisecond, false)
	m.RecordMap(2*time.Millisecond, true)
	m.RecordEmit(5 * time.Millisecond)
	m.RecordEmit(2 * time.Millisecond)
	m.UpdatePending(3)
	m.UpdatePending(1)

	stats := m.Stats()
	assert.Equal(t, uint64(2), stats.ElementsSubmitted)
	assert.Equal(t, uint64(2), stats.ElementsMapped)
	assert.Equal(t, uint64(2), stats.ElementsEmitted)
	assert.Equal(t, 5*time.Millisecond, stats.MaxLatency)
	assert.Equal(t, uint64(1), stats.ErrorValues)
	assert.Equal(t, 3*time.Millisecond, stats.MapTime)
	assert.Equal(t, 1, stats.CurrentPending)
	assert.Equal(t, 3, stats.PeakPending)
	assert.False(t, stats.LastElementTime.IsZero())

	m.Reset()
	stats = m.Stats()
	assert.Zero(t, stats.ElementsSubmitted)
	assert.Zero(t, stats.ErrorValues)
	assert.Zero(t, stats.PeakPending)
	assert.Zero(t, stats.MaxLatency)
	assert.True(t, stats.LastElementTime.IsZero())
}

// ============================================================================
// Options tests
// ============================================================================

func TestOptions_Defaults(t *testing.T) {
	cfg := newConfig(nil)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, DefaultMaxPending, cfg.MaxPending)
	assert.NotNil(t, cfg.Logger)
	assert.Nil(t, cfg.Metrics)
}

func TestOptions_IgnoreInvalidValues(t *testing.T) {
	cfg := newConfig([]Option{
		WithWorkers(0),
		WithBufferSize(-1),
		WithMaxPending(0),
		WithLogger(nil),
	})
	def := DefaultConfig()
	assert.Equal(t, def.Workers, cfg.Workers)
	assert.Equal(t, def.BufferSize, cfg.BufferSize)
	assert.Equal(t, def.MaxPending, cfg.MaxPending)
	assert.NotNil(t, cfg.Logger)
}

func TestOptions_WithConfigThenOverride(t *testing.T) {
	cfg := newConfig([]Option{
		WithConfig(Config{Workers: 8, BufferSize: 2}),
		WithBufferSize(16),
	})
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 16, cfg.BufferSize)
	assert.NotNil(t, cfg.Logger)
}

// ============================================================================
// Map tests
// ============================================================================

func TestMap_PreservesOrderAndLength(t *testing.T) {
	out := collect(Map(context.Background(), seqOf(1, 2, 3, 4), double))
	assert.Equal(t, []int64{2, 4, 6, 8}, intsOf(t, out))
}

func TestMap_ErrorElementsIsolated(t *testing.T) {
	in := func(yield func(value.Value) bool) {
		_ = yield(intValue(1)) &&
			yield(value.String("x", value.NewSpan(3, 6))) &&
			yield(intValue(2))
	}
	out := collect(Map(context.Background(), in, double))
	require.Len(t, out, 3)
	assert.False(t, out[0].IsError())
	assert.True(t, out[1].IsError())
	assert.Equal(t, value.NewSpan(3, 6), out[1].Span())
	assert.False(t, out[2].IsError())
}

func TestMap_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []value.Value
	for v := range Map(ctx, naturals(), double) {
		got = append(got, v)
		if len(got) == 5 {
			cancel()
		}
	}
	assert.Equal(t, []int64{0, 2, 4, 6, 8}, intsOf(t, got))
}

func TestMap_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	out := collect(Map(ctx, seqOf(1, 2, 3), func(v value.Value) value.Value {
		calls.Add(1)
		return v
	}))
	assert.Empty(t, out)
	assert.Zero(t, calls.Load())
}

func TestMap_ConsumerStopsEarly(t *testing.T) {
	var got []value.Value
	for v := range Map(context.Background(), naturals(), double) {
		got = append(got, v)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []int64{0, 2, 4}, intsOf(t, got))
}

// ============================================================================
// MapOrdered tests
// ============================================================================

func TestMapOrdered_PreservesOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	ns := make([]int64, 200)
	want := make([]int64, 200)
	for i := range ns {
		ns[i] = int64(i)
		want[i] = int64(i) * 2
	}
	out := collect(MapOrdered(context.Background(), seqOf(ns...), double, WithWorkers(8), WithBufferSize(4)))
	assert.Equal(t, want, intsOf(t, out))
}

func TestMapOrdered_SlowFirstElement(t *testing.T) {
	defer goleak.VerifyNone(t)
	slow := func(v value.Value) value.Value {
		if n, _ := v.AsInt(); n == 0 {
			time.Sleep(20 * time.Millisecond)
		}
		return double(v)
	}
	metrics := NewMetrics()
	out := collect(MapOrdered(
		context.Background(),
		seqOf(0, 1, 2, 3, 4, 5, 6, 7),
		slow,
		WithWorkers(4),
		WithMetrics(metrics),
	))
	assert.Equal(t, []int64{0, 2, 4, 6, 8, 10, 12, 14}, intsOf(t, out))
	assert.Equal(t, uint64(8), metrics.Stats().ElementsEmitted)
}

func TestMapOrdered_MetricsRecorded(t *testing.T) {
	defer goleak.VerifyNone(t)
	in := func(yield func(value.Value) bool) {
		_ = yield(intValue(1)) &&
			yield(value.String("x", value.UnknownSpan)) &&
			yield(intValue(2))
	}
	metrics := NewMetrics()
	out := collect(MapOrdered(context.Background(), in, double, WithWorkers(2), WithMetrics(metrics)))
	require.Len(t, out, 3)
	assert.True(t, out[1].IsError())

	stats := metrics.Stats()
	assert.Equal(t, uint64(3), stats.ElementsSubmitted)
	assert.Equal(t, uint64(3), stats.ElementsMapped)
	assert.Equal(t, uint64(3), stats.ElementsEmitted)
	assert.Equal(t, uint64(1), stats.ErrorValues)
	assert.Positive(t, stats.MaxLatency)
}

func TestMapMetricsRecorder_SkipsUnmappedItems(t *testing.T) {
	assert.Nil(t, MapMetricsRecorder(nil))

	metrics := NewMetrics()
	record := MapMetricsRecorder(metrics)
	record(NewItem(0, intValue(1)), nil)
	mapped := NewItem(1, intValue(1))
	mapped.SetOutput(value.String("x", value.UnknownSpan), time.Millisecond)
	record(mapped, nil)
	record(mapped, errors.New("stage failed"))

	stats := metrics.Stats()
	assert.Equal(t, uint64(1), stats.ElementsMapped)
	assert.Equal(t, uint64(0), stats.ErrorValues)
	assert.Equal(t, time.Millisecond, stats.MapTime)
}

func TestMapOrdered_CancelYieldsPrefix(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []value.Value
	for v := range MapOrdered(ctx, naturals(), double, WithWorkers(4)) {
		got = append(got, v)
		if len(got) == 10 {
			cancel()
		}
	}
	assert.Equal(t, []int64{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}, intsOf(t, got))
}

func TestMapOrdered_ConsumerStopsEarly(t *testing.T) {
	defer goleak.VerifyNone(t)
	var got []value.Value
	for v := range MapOrdered(context.Background(), naturals(), double, WithWorkers(3)) {
		got = append(got, v)
		if len(got) == 4 {
			break
		}
	}
	assert.Equal(t, []int64{0, 2, 4, 6}, intsOf(t, got))
}

func TestMapOrdered_EmptyInput(t *testing.T) {
	defer goleak.VerifyNone(t)
	out := collect(MapOrdered(context.Background(), seqOf(), double, WithWorkers(2)))
	assert.Empty(t, out)
}

// ============================================================================
// Data tests
// ============================================================================

func TestData_MapListValue(t *testing.T) {
	span := value.NewSpan(0, 9)
	list := value.List([]value.Value{intValue(5), intValue(3), intValue(2)}, span)

	out := FromValue(list).Map(context.Background(), double)
	assert.True(t, out.IsStream())
	assert.True(t, out.FromList())
	assert.Equal(t, span, out.Span())

	collected := out.Collect()
	vals, ok := collected.AsList()
	require.True(t, ok)
	assert.Equal(t, []int64{10, 6, 4}, intsOf(t, vals))
	assert.Equal(t, span, collected.Span())
}

func TestData_MapScalarValue(t *testing.T) {
	out := FromValue(intValue(17)).Map(context.Background(), double)
	assert.False(t, out.IsStream())
	assert.False(t, out.FromList())
	v, ok := out.Value()
	require.True(t, ok)
	n, _ := v.AsInt()
	assert.Equal(t, int64(34), n)

	var count int
	for range out.Stream() {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestData_MapStream(t *testing.T) {
	out := FromStream(seqOf(1, 2, 3)).Map(context.Background(), double)
	assert.True(t, out.IsStream())
	assert.False(t, out.FromList())
	_, ok := out.Value()
	assert.False(t, ok)
	assert.Equal(t, []int64{2, 4, 6}, intsOf(t, collect(out.Stream())))
}

func TestData_MapWithWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)
	vals := make([]value.Value, 50)
	want := make([]int64, 50)
	for i := range vals {
		vals[i] = intValue(int64(i))
		want[i] = int64(i) * 2
	}
	out := FromValue(value.List(vals, value.UnknownSpan)).
		Map(context.Background(), double, WithWorkers(4)).
		Collect()
	got, ok := out.AsList()
	require.True(t, ok)
	assert.Equal(t, want, intsOf(t, got))
}

func TestData_EmptyList(t *testing.T) {
	out := FromValue(value.List(nil, value.UnknownSpan)).Map(context.Background(), double).Collect()
	vals, ok := out.AsList()
	require.True(t, ok)
	assert.Empty(t, vals)
}

func TestData_ZeroStream(t *testing.T) {
	var d Data
	assert.True(t, d.IsStream())
	assert.Empty(t, collect(d.Stream()))
}
