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

// NormalizeShift maps any shift amount into [0, 64)
func NormalizeShift(amount int64) uint32 {
	return uint32(((amount % 64) + 64) % 64)
}

// checkedShl shifts v left by n bits, failing only when n is outside the
// width of v. Amounts from NormalizeShift never fail.
func checkedShl(v int64, n uint32) (int64, bool) {
	if n >= 64 {
		return 0, false
	}
	return v << n, true
}

// ShiftLeft is a left shift at a fixed 64-bit width
type ShiftLeft struct {
	Amount int64
	Head   value.Span
}

// Apply shifts a single element. Non-integer elements become inline errors.
func (s ShiftLeft) Apply(v value.Value) value.Value {
	span := v.Span().Or(s.Head)
	val, ok := v.AsInt()
	if !ok {
		return unsupportedInput(v, span)
	}
	shiftBits := NormalizeShift(s.Amount)
	res, ok := checkedShl(val, shiftBits)
	if !ok {
		return value.Error(&value.ShellError{
			Kind: value.ShiftOverflow,
			Msg:  fmt.Sprintf("Shift left overflow %d << %d", val, shiftBits),
			Span: span,
		})
	}
	return value.Int(res, span)
}
