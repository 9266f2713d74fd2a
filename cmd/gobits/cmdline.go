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

package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/blinklabs-io/gobits/value"
)

// commandLine is the invocation as typed, used to place diagnostics. Offsets
// are into "bits" followed by the raw arguments joined with single spaces.
type commandLine struct {
	source string
	args   []string
	spans  []value.Span
}

func newCommandLine(args []string) *commandLine {
	c := &commandLine{
		args:  args,
		spans: make([]value.Span, len(args)),
	}
	var b strings.Builder
	b.WriteString(programName)
	for i, arg := range args {
		b.WriteByte(' ')
		start := b.Len()
		b.WriteString(arg)
		c.spans[i] = value.NewSpan(start, b.Len())
	}
	c.source = b.String()
	return c
}

// head returns the span of "bits <name>", or of "bits" alone when name was
// not typed.
func (c *commandLine) head(name string) value.Span {
	for i, arg := range c.args {
		if arg == name {
			return value.NewSpan(0, c.spans[i].End)
		}
	}
	return value.NewSpan(0, len(programName))
}

// positional returns the span of the first argument equal to v that is not
// the value of a flag in fs.
func (c *commandLine) positional(fs *pflag.FlagSet, v string) value.Span {
	afterDashes := false
	for i := 0; i < len(c.args); i++ {
		arg := c.args[i]
		if !afterDashes {
			if arg == "--" {
				afterDashes = true
				continue
			}
			if strings.HasPrefix(arg, "-") && len(arg) > 1 {
				if !strings.Contains(arg, "=") && takesValue(fs, arg) {
					i++
				}
				continue
			}
		}
		if arg == v {
			return c.spans[i]
		}
	}
	return value.UnknownSpan
}

// flagValue finds the last value given for a flag, in any of the forms
// --name v, --name=v, -s v, -s=v and -sv.
func (c *commandLine) flagValue(long string, short string) (value.Spanned[string], bool) {
	var (
		ret   value.Spanned[string]
		found bool
	)
	for i := 0; i < len(c.args); i++ {
		arg := c.args[i]
		if arg == "--" {
			break
		}
		var prefix string
		switch {
		case arg == "--"+long || (short != "" && arg == "-"+short):
			if i+1 < len(c.args) {
				ret = value.Spanned[string]{Item: c.args[i+1], Span: c.spans[i+1]}
				found = true
				i++
			}
			continue
		case strings.HasPrefix(arg, "--"+long+"="):
			prefix = "--" + long + "="
		case short != "" && strings.HasPrefix(arg, "-"+short+"="):
			prefix = "-" + short + "="
		case short != "" && strings.HasPrefix(arg, "-"+short) && !strings.HasPrefix(arg, "--"):
			prefix = "-" + short
		default:
			continue
		}
		start := c.spans[i].Start + len(prefix)
		ret = value.Spanned[string]{
			Item: arg[len(prefix):],
			Span: value.NewSpan(start, c.spans[i].End),
		}
		found = true
	}
	return ret, found
}

// takesValue reports whether a flag argument consumes the following argument
func takesValue(fs *pflag.FlagSet, arg string) bool {
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		flag := fs.Lookup(name)
		return flag != nil && flag.NoOptDefVal == ""
	}
	shorthands := strings.TrimPrefix(arg, "-")
	for i := range len(shorthands) {
		flag := fs.ShorthandLookup(shorthands[i : i+1])
		if flag == nil {
			return false
		}
		if flag.NoOptDefVal == "" {
			// The rest of the group is the value when anything follows
			return i == len(shorthands)-1
		}
	}
	return false
}
