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
	"fmt"

	"github.com/blinklabs-io/gobits/value"
)

// Operation is a per-element transform. Apply never fails: problems are
// returned as error values in place of the element.
type Operation interface {
	Apply(v value.Value) value.Value
}

// Rotation is the configuration of a single rotate invocation. It is built
// once and shared read-only by every element.
type Rotation struct {
	Amount      uint32
	Direction   Direction
	Signed      bool
	NumberBytes NumberBytes
	// Head is the span of the invocation, used for elements that carry none
	Head value.Span
}

// NewRotation validates the width specifier and builds a Rotation. An invalid
// specifier fails here, before any element is processed.
func NewRotation(
	amount uint32,
	dir Direction,
	signed bool,
	numberBytes *value.Spanned[string],
	head value.Span,
) (Rotation, error) {
	nb, err := ParseNumberBytes(numberBytes)
	if err != nil {
		return Rotation{}, err
	}
	return Rotation{
		Amount:      amount,
		Direction:   dir,
		Signed:      signed,
		NumberBytes: nb,
		Head:        head,
	}, nil
}

// Apply rotates a single element
func (r Rotation) Apply(v value.Value) value.Value {
	span := v.Span().Or(r.Head)
	val, ok := v.AsInt()
	if !ok {
		return unsupportedInput(v, span)
	}
	w, ok := SelectWidth(r.NumberBytes, val, r.Signed)
	if !ok {
		// Unreachable once NewRotation has rejected Invalid
		return v.WithSpan(span)
	}
	res, err := Rotate(val, w, r.Amount, r.Direction)
	if err != nil {
		return value.Error(&value.ShellError{
			Kind: value.RotationOverflow,
			Msg: fmt.Sprintf(
				"Rotate %s result beyond the range of 64 bit signed number",
				r.Direction,
			),
			Label: err.Error(),
			Span:  span,
			Cause: err,
		})
	}
	return value.Int(res, span)
}

func unsupportedInput(v value.Value, span value.Span) value.Value {
	return value.Error(value.Unsupported(
		fmt.Sprintf("Only integer values are supported, input type: %s", v.Type()),
		span,
	))
}
