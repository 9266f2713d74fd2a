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

// Package cbor provides the CBOR plumbing used to move value streams in and out
// of the bits commands.
//
// It wraps github.com/fxamacker/cbor/v2 with cached encode/decode modes and a
// custom tag set.
//
// # Key Types
//
//   - StreamDecoder: position-tracking decoder for CBOR sequences read from a pipe
//   - ListWriter: streams an indefinite-length array whose length is not known yet
//   - ErrorRecord: wire form of an inline error element (tag 27501)
//   - RawMessage, Tag, RawTag: aliases for deferred decoding and semantic tags
//
// # Encoding Gotchas
//
//  1. Positive integers decode to uint64, negative ones to int64; callers must
//     range-check before narrowing.
//  2. A ListWriter must be closed, or the output stream is left without its
//     break stop code.
package cbor
