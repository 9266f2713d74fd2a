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
	"github.com/blinklabs-io/gobits/value"
)

// Example is a documented invocation together with its expected result
type Example struct {
	Description string
	Example     string
	Operation   Operation
	Input       value.Value
	Result      value.Value
}

// Command describes a bits subcommand for the CLI and its help text
type Command struct {
	Name        string
	Usage       string
	AmountUsage string
	SearchTerms []string
	Examples    []Example
}

var RotateLeftCommand = Command{
	Name:        "rotate-left",
	Usage:       "Bitwise rotate left for integers",
	AmountUsage: "number of bits to rotate left",
	SearchTerms: []string{"rol"},
	Examples: []Example{
		{
			Description: "Rotate left a number with 2 bits",
			Example:     "17 | bits rotate-left 2",
			Operation:   Rotation{Amount: 2, Direction: Left, Head: value.UnknownSpan},
			Input:       testInt(17),
			Result:      testInt(68),
		},
		{
			Description: "Rotate left a list of numbers",
			Example:     "[5 3 2] | bits rotate-left 2",
			Operation:   Rotation{Amount: 2, Direction: Left, Head: value.UnknownSpan},
			Input:       testList(5, 3, 2),
			Result:      testList(20, 12, 8),
		},
	},
}

var RotateRightCommand = Command{
	Name:        "rotate-right",
	Usage:       "Bitwise rotate right for integers",
	AmountUsage: "number of bits to rotate right",
	SearchTerms: []string{"ror"},
	Examples: []Example{
		{
			Description: "Rotate right a number with 2 bits",
			Example:     "17 | bits rotate-right 2",
			Operation:   Rotation{Amount: 2, Direction: Right, Head: value.UnknownSpan},
			Input:       testInt(17),
			Result:      testInt(68),
		},
		{
			Description: "Rotate right a list of numbers",
			Example:     "[15 33 92] | bits rotate-right 2",
			Operation:   Rotation{Amount: 2, Direction: Right, Head: value.UnknownSpan},
			Input:       testList(15, 33, 92),
			Result:      testList(195, 72, 23),
		},
	},
}

var ShiftLeftCommand = Command{
	Name:        "shift-left",
	Usage:       "Bitwise shift left for integers",
	AmountUsage: "number of bits to shift left",
	SearchTerms: []string{"shl"},
	Examples: []Example{
		{
			Description: "Shift left a number with 8 bits, as a plain 64-bit shift (2 << 8)",
			Example:     "2 | bits shift-left 8",
			Operation:   ShiftLeft{Amount: 8, Head: value.UnknownSpan},
			Input:       testInt(2),
			Result:      testInt(512),
		},
		{
			Description: "Shift left a list of numbers",
			Example:     "[5 3 2] | bits shift-left 2",
			Operation:   ShiftLeft{Amount: 2, Head: value.UnknownSpan},
			Input:       testList(5, 3, 2),
			Result:      testList(20, 12, 8),
		},
	},
}

// Commands lists every bits subcommand
var Commands = []Command{
	RotateLeftCommand,
	RotateRightCommand,
	ShiftLeftCommand,
}

func testInt(v int64) value.Value {
	return value.Int(v, value.UnknownSpan)
}

func testList(vals ...int64) value.Value {
	list := make([]value.Value, 0, len(vals))
	for _, v := range vals {
		list = append(list, testInt(v))
	}
	return value.List(list, value.UnknownSpan)
}
