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

package value

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/blinklabs-io/gobits/cbor"
)

// FromCbor converts a single encoded CBOR data item into a Value. offset is the
// position of data in the enclosing stream and is used for spans.
func FromCbor(data []byte, offset int) (Value, error) {
	span := NewSpan(offset, offset+len(data))
	majorType, ok := cbor.MajorType(data)
	if !ok {
		return Value{}, io.ErrUnexpectedEOF
	}
	switch majorType {
	case cbor.CborTypeUnsignedInt:
		var tmp uint64
		if _, err := cbor.Decode(data, &tmp); err != nil {
			return Value{}, err
		}
		if tmp > math.MaxInt64 {
			return otherWithRaw(new(big.Int).SetUint64(tmp), TypeBigInt, data, span), nil
		}
		return Int(int64(tmp), span), nil
	case cbor.CborTypeNegativeInt:
		var tmp any
		if _, err := cbor.Decode(data, &tmp); err != nil {
			return Value{}, err
		}
		if v, ok := tmp.(int64); ok {
			return Int(v, span), nil
		}
		return otherWithRaw(tmp, TypeBigInt, data, span), nil
	case cbor.CborTypeArray:
		var items []cbor.RawMessage
		if _, err := cbor.Decode(data, &items); err != nil {
			return Value{}, err
		}
		// Work out where the first item starts so each element gets its own span
		total := 0
		for _, item := range items {
			total += len(item)
		}
		headerLen := len(data) - total
		if data[0] == cbor.CborIndefArrayStart {
			headerLen = 1
		}
		vals := make([]Value, 0, len(items))
		pos := offset + headerLen
		for _, item := range items {
			tmpVal, err := FromCbor(item, pos)
			if err != nil {
				return Value{}, err
			}
			vals = append(vals, tmpVal)
			pos += len(item)
		}
		return List(vals, span), nil
	case cbor.CborTypeTag:
		var tmpTag cbor.RawTag
		if _, err := cbor.Decode(data, &tmpTag); err != nil {
			return Value{}, err
		}
		if tmpTag.Number == cbor.CborTagErrorValue {
			var rec cbor.ErrorRecord
			if _, err := cbor.Decode(data, &rec); err != nil {
				return Value{}, fmt.Errorf("decode error value: %w", err)
			}
			errSpan := NewSpan(int(rec.Start), int(rec.End))
			if !errSpan.Known() {
				errSpan = span
			}
			return Error(&ShellError{
				Kind:  ErrorKind(rec.Kind),
				Msg:   rec.Msg,
				Label: rec.Label,
				Span:  errSpan,
			}), nil
		}
		var tmp any
		if _, err := cbor.Decode(data, &tmp); err != nil {
			return Value{}, err
		}
		return otherWithRaw(tmp, TypeAny, data, span), nil
	default:
		var tmp any
		if _, err := cbor.Decode(data, &tmp); err != nil {
			return Value{}, err
		}
		return otherWithRaw(tmp, typeOf(tmp), data, span), nil
	}
}

// MarshalCBOR encodes the value. Other values read from CBOR are written back
// byte-for-byte.
func (v Value) MarshalCBOR() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return cbor.Encode(v.i)
	case KindList:
		list := v.list
		if list == nil {
			list = []Value{}
		}
		return cbor.Encode(list)
	case KindError:
		return cbor.Encode(errorRecord(v.err))
	default:
		if v.raw != nil {
			return v.raw, nil
		}
		return cbor.Encode(v.other)
	}
}

func errorRecord(e *ShellError) cbor.ErrorRecord {
	if e == nil {
		return cbor.ErrorRecord{Kind: string(GenericError), Start: -1, End: -1}
	}
	return cbor.ErrorRecord{
		Kind:  string(e.Kind),
		Msg:   e.Msg,
		Label: e.Label,
		Start: int64(e.Span.Start),
		End:   int64(e.Span.End),
	}
}

// CborReader reads a CBOR sequence (RFC 8742) of values
type CborReader struct {
	dec *cbor.StreamDecoder
}

func NewCborReader(r io.Reader) (*CborReader, error) {
	dec, err := cbor.NewStreamDecoder(r)
	if err != nil {
		return nil, err
	}
	return &CborReader{dec: dec}, nil
}

func (r *CborReader) Next() (Value, error) {
	pos := r.dec.Position()
	start, raw, err := r.dec.DecodeRaw()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("malformed CBOR item at byte %d: %w", pos, err)
	}
	return FromCbor(raw, start)
}

// CborWriter writes values as a CBOR sequence. Between BeginList and EndList
// values are written as elements of an indefinite-length array.
type CborWriter struct {
	w    io.Writer
	list *cbor.ListWriter
}

func NewCborWriter(w io.Writer) *CborWriter {
	return &CborWriter{w: w}
}

func (w *CborWriter) Write(v Value) error {
	data, err := v.MarshalCBOR()
	if err != nil {
		return err
	}
	if w.list != nil {
		return w.list.WriteRaw(data)
	}
	_, err = w.w.Write(data)
	return err
}

func (w *CborWriter) BeginList() error {
	if w.list != nil {
		return ErrNestedList
	}
	w.list = cbor.NewListWriter(w.w)
	return nil
}

func (w *CborWriter) EndList() error {
	if w.list == nil {
		return ErrNoList
	}
	err := w.list.Close()
	w.list = nil
	return err
}
