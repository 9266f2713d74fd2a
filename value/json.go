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
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// FromJSON converts a single JSON value into a Value. offset is the position
// of data in the enclosing stream.
//
// An object of the form {"error": {"kind": ..., "msg": ...}} is read back as an
// error value, mirroring how JSONWriter encodes them.
func FromJSON(data []byte, offset int) (Value, error) {
	span := NewSpan(offset, offset+len(data))
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Value{}, io.ErrUnexpectedEOF
	}
	switch trimmed[0] {
	case '[':
		return listFromJSON(data, offset, span)
	case '{':
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var tmp map[string]any
		if err := dec.Decode(&tmp); err != nil {
			return Value{}, err
		}
		if errVal, ok := errorFromJSON(tmp, span); ok {
			return errVal, nil
		}
		return otherWithRaw(tmp, TypeRecord, nil, span), nil
	case '"':
		var tmp string
		if err := json.Unmarshal(data, &tmp); err != nil {
			return Value{}, err
		}
		return String(tmp, span), nil
	case 't', 'f':
		var tmp bool
		if err := json.Unmarshal(data, &tmp); err != nil {
			return Value{}, err
		}
		return Other(tmp, span), nil
	case 'n':
		return Other(nil, span), nil
	default:
		return numberFromJSON(string(trimmed), span)
	}
}

func listFromJSON(data []byte, offset int, span Span) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	// Consume the opening bracket
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	vals := []Value{}
	for dec.More() {
		var item json.RawMessage
		if err := dec.Decode(&item); err != nil {
			return Value{}, err
		}
		end := int(dec.InputOffset())
		tmpVal, err := FromJSON(item, offset+end-len(item))
		if err != nil {
			return Value{}, err
		}
		vals = append(vals, tmpVal)
	}
	// Consume the closing bracket so truncated input is reported
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return List(vals, span), nil
}

func numberFromJSON(num string, span Span) (Value, error) {
	if i, err := strconv.ParseInt(num, 10, 64); err == nil {
		return Int(i, span), nil
	}
	if !strings.ContainsAny(num, ".eE") {
		bi, ok := new(big.Int).SetString(num, 10)
		if !ok {
			return Value{}, fmt.Errorf("invalid JSON number %q", num)
		}
		return otherWithRaw(bi, TypeBigInt, nil, span), nil
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid JSON number %q: %w", num, err)
	}
	return Other(f, span), nil
}

func errorFromJSON(obj map[string]any, span Span) (Value, bool) {
	if len(obj) != 1 {
		return Value{}, false
	}
	inner, ok := obj["error"].(map[string]any)
	if !ok {
		return Value{}, false
	}
	kind, ok := inner["kind"].(string)
	if !ok {
		return Value{}, false
	}
	msg, _ := inner["msg"].(string)
	label, _ := inner["label"].(string)
	errSpan := span
	if s, ok := inner["span"].(map[string]any); ok {
		start, startErr := jsonInt(s["start"])
		end, endErr := jsonInt(s["end"])
		if startErr == nil && endErr == nil {
			errSpan = NewSpan(start, end)
		}
	}
	return Error(&ShellError{
		Kind:  ErrorKind(kind),
		Msg:   msg,
		Label: label,
		Span:  errSpan,
	}), true
}

func jsonInt(v any) (int, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("not a number: %v", v)
	}
	i, err := n.Int64()
	return int(i), err
}

// JSONReader reads a stream of whitespace-separated JSON values
type JSONReader struct {
	dec *json.Decoder
}

func NewJSONReader(r io.Reader) *JSONReader {
	return &JSONReader{dec: json.NewDecoder(r)}
}

func (r *JSONReader) Next() (Value, error) {
	var raw json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	end := int(r.dec.InputOffset())
	return FromJSON(raw, end-len(raw))
}

type jsonSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type jsonError struct {
	Kind  string    `json:"kind"`
	Msg   string    `json:"msg"`
	Label string    `json:"label,omitempty"`
	Span  *jsonSpan `json:"span,omitempty"`
}

// MarshalJSON encodes the value
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindList:
		list := v.list
		if list == nil {
			list = []Value{}
		}
		return json.Marshal(list)
	case KindError:
		tmp := jsonError{Kind: string(GenericError)}
		if v.err != nil {
			tmp.Kind = string(v.err.Kind)
			tmp.Msg = v.err.Msg
			tmp.Label = v.err.Label
			if v.err.Span.Known() {
				tmp.Span = &jsonSpan{Start: v.err.Span.Start, End: v.err.Span.End}
			}
		}
		return json.Marshal(map[string]jsonError{"error": tmp})
	default:
		return json.Marshal(jsonSafe(v.other))
	}
}

// jsonSafe converts values decoded from CBOR into shapes encoding/json accepts
func jsonSafe(v any) any {
	switch tmp := v.(type) {
	case map[any]any:
		ret := make(map[string]any, len(tmp))
		for key, val := range tmp {
			ret[fmt.Sprint(key)] = jsonSafe(val)
		}
		return ret
	case []any:
		ret := make([]any, len(tmp))
		for i, val := range tmp {
			ret[i] = jsonSafe(val)
		}
		return ret
	case big.Int:
		return json.Number(tmp.String())
	case *big.Int:
		return json.Number(tmp.String())
	default:
		return v
	}
}

// JSONWriter writes one JSON value per line. A list opened with BeginList is
// written incrementally as a single JSON array.
type JSONWriter struct {
	w       *bufio.Writer
	inList  bool
	listLen int
}

func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w)}
}

func (w *JSONWriter) Write(v Value) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	if w.inList {
		if w.listLen > 0 {
			if err := w.w.WriteByte(','); err != nil {
				return err
			}
		}
		w.listLen++
		_, err = w.w.Write(data)
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *JSONWriter) BeginList() error {
	if w.inList {
		return ErrNestedList
	}
	w.inList = true
	w.listLen = 0
	return w.w.WriteByte('[')
}

func (w *JSONWriter) EndList() error {
	if !w.inList {
		return ErrNoList
	}
	w.inList = false
	if _, err := w.w.WriteString("]\n"); err != nil {
		return err
	}
	return w.w.Flush()
}
