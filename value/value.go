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
	"math/big"
)

// Kind is the discriminant of a Value
type Kind uint8

const (
	KindOther Kind = iota
	KindInt
	KindList
	KindError
)

// Type names the user-facing type of a value, used in diagnostics
type Type string

const (
	TypeInt     Type = "int"
	TypeList    Type = "list"
	TypeError   Type = "error"
	TypeString  Type = "string"
	TypeFloat   Type = "float"
	TypeBool    Type = "bool"
	TypeBinary  Type = "binary"
	TypeRecord  Type = "record"
	TypeNothing Type = "nothing"
	TypeBigInt  Type = "bigint"
	TypeAny     Type = "any"
)

// Value is a tagged value flowing through a pipeline. The zero Value is an
// Other holding nothing, with an unknown span.
type Value struct {
	kind  Kind
	i     int64
	list  []Value
	err   *ShellError
	other any
	typ   Type
	// raw holds the original encoding of an Other so it can be passed through
	// unchanged
	raw  []byte
	span Span
}

// Int creates an integer value
func Int(v int64, span Span) Value {
	return Value{kind: KindInt, i: v, typ: TypeInt, span: span}
}

// List creates a list value. The slice is not copied.
func List(vals []Value, span Span) Value {
	if vals == nil {
		vals = []Value{}
	}
	return Value{kind: KindList, list: vals, typ: TypeList, span: span}
}

// Error creates an error value. The span of an error value is the span of the
// error itself.
func Error(err *ShellError) Value {
	return Value{kind: KindError, err: err, typ: TypeError, span: err.Span}
}

// Other creates a value of a type the bits commands do not operate on
func Other(v any, span Span) Value {
	return Value{kind: KindOther, other: v, typ: typeOf(v), span: span}
}

// String is a convenience constructor for string values
func String(s string, span Span) Value {
	return Other(s, span)
}

func otherWithRaw(v any, typ Type, raw []byte, span Span) Value {
	return Value{kind: KindOther, other: v, typ: typ, raw: raw, span: span}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Type returns the user-facing type name
func (v Value) Type() Type {
	if v.typ == "" {
		return TypeNothing
	}
	return v.typ
}

// Span returns the source position of the value
func (v Value) Span() Span {
	return v.span
}

// WithSpan returns a copy of the value carrying the given span
func (v Value) WithSpan(span Span) Value {
	v.span = span
	if v.kind == KindError && v.err != nil {
		errCopy := *v.err
		errCopy.Span = span
		v.err = &errCopy
	}
	return v
}

func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

func (v Value) AsError() (*ShellError, bool) {
	if v.kind != KindError {
		return nil, false
	}
	return v.err, true
}

// Interface returns the Go value held by an Other
func (v Value) Interface() any {
	return v.other
}

func (v Value) IsError() bool {
	return v.kind == KindError
}

func typeOf(v any) Type {
	switch v.(type) {
	case nil:
		return TypeNothing
	case string:
		return TypeString
	case float32, float64:
		return TypeFloat
	case bool:
		return TypeBool
	case []byte:
		return TypeBinary
	case map[string]any, map[any]any:
		return TypeRecord
	case big.Int, *big.Int:
		return TypeBigInt
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		// Integers that reach Other did not fit the canonical int64
		return TypeBigInt
	case []any:
		return TypeList
	default:
		return TypeAny
	}
}
