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
	mathbits "math/bits"
)

// Direction of a rotation
type Direction uint8

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Right {
		return "right"
	}
	return "left"
}

// OverflowError is returned when a rotated value does not fit in an int64
type OverflowError struct {
	// Value is the original input
	Value int64
	// Narrowed is the input after narrowing to Width, formatted for display
	Narrowed  string
	Width     Width
	Amount    uint32
	Direction Direction
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf(
		"%s of the specified number of bytes rotate %s %d bits",
		e.Narrowed,
		e.Direction,
		e.Amount,
	)
}

type integer interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

// Rotate narrows v to w, rotates it by amount bits in the given direction and
// widens the result back to int64. amount is taken modulo the width.
func Rotate(v int64, w Width, amount uint32, dir Direction) (int64, error) {
	if w.Signed {
		switch w.Bits {
		case 8:
			return rotateAs[int8](v, w, amount, dir)
		case 16:
			return rotateAs[int16](v, w, amount, dir)
		case 32:
			return rotateAs[int32](v, w, amount, dir)
		case 64:
			return rotateAs[int64](v, w, amount, dir)
		}
	} else {
		switch w.Bits {
		case 8:
			return rotateAs[uint8](v, w, amount, dir)
		case 16:
			return rotateAs[uint16](v, w, amount, dir)
		case 32:
			return rotateAs[uint32](v, w, amount, dir)
		case 64:
			return rotateAs[uint64](v, w, amount, dir)
		}
	}
	return 0, fmt.Errorf("unsupported rotation width: %d bits", w.Bits)
}

func rotateAs[T integer](v int64, w Width, amount uint32, dir Direction) (int64, error) {
	narrowed := T(v)
	rotated := rotate(narrowed, amount, dir)
	widened := int64(rotated)
	// Only an unsigned 64-bit result with the top bit set wraps negative
	if widened < 0 && rotated > 0 {
		return 0, &OverflowError{
			Value:     v,
			Narrowed:  fmt.Sprint(narrowed),
			Width:     w,
			Amount:    amount,
			Direction: dir,
		}
	}
	return widened, nil
}

// rotate rotates the bit pattern of val. Signed kinds rotate their two's
// complement representation.
func rotate[T integer](val T, amount uint32, dir Direction) T {
	// Reduce first so the conversion to int cannot overflow on 32-bit platforms
	k := int(amount % 64)
	if dir == Right {
		k = -k
	}
	switch v := any(val).(type) {
	case int8:
		return T(int8(mathbits.RotateLeft8(uint8(v), k)))
	case uint8:
		return T(mathbits.RotateLeft8(v, k))
	case int16:
		return T(int16(mathbits.RotateLeft16(uint16(v), k)))
	case uint16:
		return T(mathbits.RotateLeft16(v, k))
	case int32:
		return T(int32(mathbits.RotateLeft32(uint32(v), k)))
	case uint32:
		return T(mathbits.RotateLeft32(v, k))
	case int64:
		return T(int64(mathbits.RotateLeft64(uint64(v), k)))
	case uint64:
		return T(mathbits.RotateLeft64(v, k))
	default:
		return val
	}
}
