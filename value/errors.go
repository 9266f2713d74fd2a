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

import "errors"

var (
	// ErrNestedList is returned by a Writer when BeginList is called twice
	ErrNestedList = errors.New("value: list already open")
	// ErrNoList is returned by a Writer when EndList has no matching BeginList
	ErrNoList = errors.New("value: no list open")
)
