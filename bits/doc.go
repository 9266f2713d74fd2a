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

// Package bits implements the bitwise rotate and shift transforms applied to
// each element of a value stream.
//
// # Width selection
//
// Rotation happens inside a fixed width. The width is either requested
// explicitly (1, 2, 4 or 8 bytes) or inferred per value ("auto"): the smallest
// of 8/16/32/64 bits whose range holds the value. Negative values, or any value
// when signed mode is forced, use signed ranges; everything else uses unsigned
// ranges. The signedness picked here is also the signedness used to narrow the
// value before rotating.
//
// # Results
//
// Rotated values are widened back to int64. Only an unsigned 64-bit rotation
// whose top bit ends up set cannot be represented; that element becomes an
// inline error value and the stream carries on.
//
// # Key Types
//
//   - NumberBytes: requested width class, parsed once per invocation
//   - Width: concrete bit width plus signedness
//   - Rotation: immutable rotate request, applied per element
//   - ShiftLeft: fixed 64-bit left shift, applied per element
package bits
