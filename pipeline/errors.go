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

package pipeline

import "errors"

var (
	// ErrNilStage is the panic value when a nil stage is passed to a worker pool.
	ErrNilStage = errors.New("pipeline: nil stage")
	// ErrPendingLimitExceeded is returned when the reorder buffer grows past its limit.
	ErrPendingLimitExceeded = errors.New("pipeline: pending element limit exceeded")
)
