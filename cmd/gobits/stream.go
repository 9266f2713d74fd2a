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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/blinklabs-io/gobits/pipeline"
	"github.com/blinklabs-io/gobits/value"
)

const (
	formatCbor = "cbor"
	formatJSON = "json"
)

func newReader(format string, r io.Reader) (value.Reader, error) {
	switch format {
	case formatCbor:
		return value.NewCborReader(r)
	case formatJSON:
		return value.NewJSONReader(r), nil
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

func newWriter(format string, w io.Writer) (value.Writer, error) {
	switch format {
	case formatCbor:
		return value.NewCborWriter(w), nil
	case formatJSON:
		return value.NewJSONWriter(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// input turns the values on stdin into the data a command is run on. A lone
// top-level value is a single value. Anything more is a stream.
type input struct {
	reader value.Reader
	// err is the read error that ended the stream, if any. It is written by
	// whichever goroutine pulls the stream.
	err error
}

func (in *input) data() (pipeline.Data, error) {
	first, err := in.reader.Next()
	if errors.Is(err, io.EOF) {
		return pipeline.FromStream(nil), nil
	}
	if err != nil {
		return pipeline.Data{}, fmt.Errorf("failed to read input: %w", err)
	}
	second, err := in.reader.Next()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			in.err = err
		}
		return pipeline.FromValue(first), nil
	}
	rest := value.Seq(in.reader, &in.err)
	return pipeline.FromStream(func(yield func(value.Value) bool) {
		if !yield(first) || !yield(second) {
			return
		}
		for v := range rest {
			if !yield(v) {
				return
			}
		}
	}), nil
}

// readError returns the error that ended the input early. It must only be
// called once the stream has been fully drained.
func (in *input) readError() error {
	if in.err == nil {
		return nil
	}
	return fmt.Errorf("failed to read input: %w", in.err)
}

// writeData writes d to w. A stream mapped from a single list is written back
// as one list. onWrite is called for every element written.
func writeData(ctx context.Context, w value.Writer, d pipeline.Data, onWrite func(value.Value)) error {
	if !d.IsStream() {
		v, _ := d.Value()
		if err := w.Write(v); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		onWrite(v)
		return nil
	}
	if d.FromList() {
		if err := w.BeginList(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if err := writeSeq(w, d.Stream(), onWrite); err != nil {
		return err
	}
	if d.FromList() {
		if err := w.EndList(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return ctx.Err()
}

func writeSeq(w value.Writer, seq iter.Seq[value.Value], onWrite func(value.Value)) error {
	for v := range seq {
		if err := w.Write(v); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		onWrite(v)
	}
	return nil
}
