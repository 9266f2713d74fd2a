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

// Span locates a value in the source it was read from. Offsets are bytes into
// the input stream, or characters into the command line for arguments.
type Span struct {
	Start int
	End   int
}

// UnknownSpan marks a value with no source position
var UnknownSpan = Span{Start: -1, End: -1}

func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Known returns true if the span points somewhere in a source
func (s Span) Known() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Or returns s, or fallback when s is unknown
func (s Span) Or(fallback Span) Span {
	if s.Known() {
		return s
	}
	return fallback
}

// Spanned pairs an item with the span it was parsed from
type Spanned[T any] struct {
	Item T
	Span Span
}
