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
	"fmt"
	"strings"
)

// ErrorKind categorizes a ShellError
type ErrorKind string

const (
	UnsupportedInput ErrorKind = "unsupported_input"
	RotationOverflow ErrorKind = "rotation_overflow"
	ShiftOverflow    ErrorKind = "shift_overflow"
	InvalidArgument  ErrorKind = "invalid_argument"
	DecodeFailure    ErrorKind = "decode_failure"
	GenericError     ErrorKind = "generic"
)

// ShellError is an error attributed to a span of the source. It is used both
// for invocation-level failures and for inline per-element error values.
type ShellError struct {
	Kind  ErrorKind
	Msg   string
	Label string
	Help  string
	Span  Span
	Cause error
}

func NewError(kind ErrorKind, msg string, span Span) *ShellError {
	return &ShellError{Kind: kind, Msg: msg, Span: span}
}

// Unsupported builds the error emitted for an input the command cannot process
func Unsupported(msg string, span Span) *ShellError {
	return NewError(UnsupportedInput, msg, span)
}

// Error implements the error interface
func (e *ShellError) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.Label != "" {
		b.WriteString(": ")
		b.WriteString(e.Label)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *ShellError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ShellError of the same kind
func (e *ShellError) Is(target error) bool {
	if t, ok := target.(*ShellError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Render formats the error as a diagnostic against the source it refers to.
// When the span does not fall inside source only the message is rendered.
func (e *ShellError) Render(source string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", e.Msg)
	if e.Span.Known() && e.Span.End <= len(source) {
		width := e.Span.End - e.Span.Start
		if width < 1 {
			width = 1
		}
		fmt.Fprintf(&b, "  | %s\n", source)
		fmt.Fprintf(
			&b,
			"  | %s%s",
			strings.Repeat(" ", e.Span.Start),
			strings.Repeat("^", width),
		)
		if e.Label != "" {
			b.WriteString(" ")
			b.WriteString(e.Label)
		}
		b.WriteString("\n")
	} else if e.Label != "" {
		fmt.Fprintf(&b, "  %s\n", e.Label)
	}
	if e.Help != "" {
		fmt.Fprintf(&b, "help: %s\n", e.Help)
	}
	return b.String()
}
