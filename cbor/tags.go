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

package cbor

import (
	"reflect"

	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	// CborTagErrorValue marks an inline error element in a value stream.
	// The number sits in the first-come-first-served range and is private to
	// this tool.
	CborTagErrorValue = 27501
)

var customTagSet _cbor.TagSet

func init() {
	// Build custom tagset
	customTagSet = _cbor.NewTagSet()
	tagOpts := _cbor.TagOptions{EncTag: _cbor.EncTagRequired, DecTag: _cbor.DecTagRequired}
	// Inline error values
	if err := customTagSet.Add(
		tagOpts,
		reflect.TypeOf(ErrorRecord{}),
		CborTagErrorValue,
	); err != nil {
		panic(err)
	}
}

// ErrorRecord is the wire form of an error element. It is always wrapped in
// CborTagErrorValue.
type ErrorRecord struct {
	StructAsArray
	Kind  string
	Msg   string
	Label string
	Start int64
	End   int64
}
