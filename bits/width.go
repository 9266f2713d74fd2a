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

package bits

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/gobits/value"
)

// ErrInvalidNumberBytes is the cause of the error returned for a width
// specifier outside 1, 2, 4, 8 and auto
var ErrInvalidNumberBytes = errors.New("invalid number of bytes")

// NumberBytes is the requested width class
type NumberBytes uint8

const (
	Auto NumberBytes = iota
	One
	Two
	Four
	Eight
	Invalid
)

func (n NumberBytes) String() string {
	switch n {
	case One:
		return "1"
	case Two:
		return "2"
	case Four:
		return "4"
	case Eight:
		return "8"
	case Auto:
		return "auto"
	default:
		return "invalid"
	}
}

// ParseNumberBytes maps the optional --number-bytes argument to a width class.
// A missing argument means Auto. Any unrecognized specifier returns Invalid
// together with an error tagged to the specifier's span.
func ParseNumberBytes(spec *value.Spanned[string]) (NumberBytes, error) {
	if spec == nil {
		return Auto, nil
	}
	switch spec.Item {
	case "1":
		return One, nil
	case "2":
		return Two, nil
	case "4":
		return Four, nil
	case "8":
		return Eight, nil
	case "auto":
		return Auto, nil
	}
	return Invalid, &value.ShellError{
		Kind:  value.UnsupportedInput,
		Msg:   "the size of number is invalid",
		Label: fmt.Sprintf("expected 1, 2, 4, 8 or auto, found %q", spec.Item),
		Span:  spec.Span,
		Cause: ErrInvalidNumberBytes,
	}
}

// Width is a concrete rotation width. Signed records which branch produced the
// width, and is the signedness used when narrowing the input.
type Width struct {
	Bits   uint8
	Signed bool
}

func (w Width) String() string {
	if w.Signed {
		return fmt.Sprintf("i%d", w.Bits)
	}
	return fmt.Sprintf("u%d", w.Bits)
}

// SelectWidth resolves a width class for a single value. Signed ranges are used
// when signed is set or v is negative.
//
// Invalid never gets past ParseNumberBytes; it still has an arm here and
// reports ok=false so the caller leaves the value untouched.
func SelectWidth(nb NumberBytes, v int64, signed bool) (Width, bool) {
	signed = signed || v < 0
	switch nb {
	case One:
		return Width{Bits: 8, Signed: signed}, true
	case Two:
		return Width{Bits: 16, Signed: signed}, true
	case Four:
		return Width{Bits: 32, Signed: signed}, true
	case Eight:
		return Width{Bits: 64, Signed: signed}, true
	case Auto:
		return Width{Bits: autoBits(v, signed), Signed: signed}, true
	case Invalid:
		return Width{}, false
	}
	return Width{}, false
}

func autoBits(v int64, signed bool) uint8 {
	if signed {
		switch {
		case v >= math.MinInt8 && v <= math.MaxInt8:
			return 8
		case v >= math.MinInt16 && v <= math.MaxInt16:
			return 16
		case v >= math.MinInt32 && v <= math.MaxInt32:
			return 32
		default:
			return 64
		}
	}
	switch {
	case v <= math.MaxUint8:
		return 8
	case v <= math.MaxUint16:
		return 16
	case v <= math.MaxUint32:
		return 32
	default:
		return 64
	}
}
