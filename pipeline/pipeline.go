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

// Package pipeline maps element functions over lazy value sequences.
//
// Map runs the function on the consuming goroutine. MapOrdered spreads the
// work over a pool of workers and reassembles results in input order. Data
// wraps the input a command receives, which is either a single value or a
// stream, and maps a single list value element by element.
package pipeline

import (
	"context"
	"iter"
	"slices"

	"github.com/blinklabs-io/gobits/value"
)

// Map returns a sequence applying fn to each element of seq, in order.
// Before producing each element it checks ctx and stops early once ctx is
// done, so a cancelled consumer sees a prefix of the full output.
func Map(ctx context.Context, seq iter.Seq[value.Value], fn func(value.Value) value.Value) iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for v := range seq {
			if ctx.Err() != nil {
				return
			}
			if !yield(fn(v)) {
				return
			}
		}
	}
}

// Data is the input or output of a command: either a single value or a
// lazy stream of values.
type Data struct {
	single *value.Value
	stream iter.Seq[value.Value]
	// fromList is set when the stream was produced by mapping a single list
	fromList bool
	span     value.Span
}

// FromValue wraps a single value.
func FromValue(v value.Value) Data {
	return Data{single: &v, span: v.Span()}
}

// FromStream wraps a lazy stream.
func FromStream(seq iter.Seq[value.Value]) Data {
	return Data{stream: seq, span: value.UnknownSpan}
}

// IsStream reports whether d holds a stream rather than a single value.
func (d Data) IsStream() bool {
	return d.single == nil
}

// FromList reports whether d is the element-wise result of mapping a single
// list value. Such a stream is written back as one list.
func (d Data) FromList() bool {
	return d.fromList
}

// Span returns the span of the wrapped value, or of the list a stream was
// mapped from.
func (d Data) Span() value.Span {
	return d.span
}

// Value returns the single value held by d.
func (d Data) Value() (value.Value, bool) {
	if d.single == nil {
		return value.Value{}, false
	}
	return *d.single, true
}

// Stream returns d as a sequence. A single value is a one-element sequence.
func (d Data) Stream() iter.Seq[value.Value] {
	if d.single != nil {
		v := *d.single
		return func(yield func(value.Value) bool) {
			yield(v)
		}
	}
	if d.stream == nil {
		return func(func(value.Value) bool) {}
	}
	return d.stream
}

// Map applies fn to d. A list value is mapped element by element into a
// stream, any other single value is mapped once, and a stream is mapped
// element-wise. With more than one worker configured the elements are mapped
// with MapOrdered.
func (d Data) Map(ctx context.Context, fn func(value.Value) value.Value, opts ...Option) Data {
	if d.single != nil {
		if vals, ok := d.single.AsList(); ok {
			return Data{
				stream:   mapSeq(ctx, slices.Values(vals), fn, opts),
				fromList: true,
				span:     d.span,
			}
		}
		return FromValue(fn(*d.single))
	}
	return Data{
		stream:   mapSeq(ctx, d.Stream(), fn, opts),
		fromList: d.fromList,
		span:     d.span,
	}
}

// Collect gathers d into a single value. A stream becomes a list carrying the
// span of the list it was mapped from, if any.
func (d Data) Collect() value.Value {
	if d.single != nil {
		return *d.single
	}
	return value.List(slices.Collect(d.Stream()), d.span)
}

func mapSeq(ctx context.Context, seq iter.Seq[value.Value], fn func(value.Value) value.Value, opts []Option) iter.Seq[value.Value] {
	if cfg := newConfig(opts); cfg.Workers > 1 {
		return MapOrdered(ctx, seq, fn, opts...)
	}
	return Map(ctx, seq, fn)
}
