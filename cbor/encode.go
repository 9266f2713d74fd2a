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

package cbor

import (
	"bytes"
	"errors"
	"io"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: _cbor.SortCoreDeterministic,
		}
		cachedEncMode, cachedEncModeErr = opts.EncModeWithTags(customTagSet)
	})
	return cachedEncMode, cachedEncModeErr
}

func Encode(data any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	enc := em.NewEncoder(buf)
	err = enc.Encode(data)
	return buf.Bytes(), err
}

// ErrListClosed is returned when writing to a ListWriter after Close
var ErrListClosed = errors.New("cbor: list already closed")

// ListWriter streams an indefinite-length CBOR array to the underlying writer.
// The item count does not need to be known up front, which allows lazily
// produced sequences to be written as a single list.
type ListWriter struct {
	w       io.Writer
	started bool
	closed  bool
}

func NewListWriter(w io.Writer) *ListWriter {
	return &ListWriter{w: w}
}

func (l *ListWriter) start() error {
	if l.started {
		return nil
	}
	l.started = true
	_, err := l.w.Write([]byte{CborIndefArrayStart})
	return err
}

// WriteRaw appends an already encoded item to the list
func (l *ListWriter) WriteRaw(item []byte) error {
	if l.closed {
		return ErrListClosed
	}
	if err := l.start(); err != nil {
		return err
	}
	_, err := l.w.Write(item)
	return err
}

// Write encodes and appends an item to the list
func (l *ListWriter) Write(item any) error {
	data, err := Encode(item)
	if err != nil {
		return err
	}
	return l.WriteRaw(data)
}

// Close terminates the list. An empty list is still written as a list.
func (l *ListWriter) Close() error {
	if l.closed {
		return nil
	}
	if err := l.start(); err != nil {
		return err
	}
	l.closed = true
	_, err := l.w.Write([]byte{CborBreak})
	return err
}
