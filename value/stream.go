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
	"errors"
	"io"
	"iter"
)

// Reader produces values one at a time. Next returns io.EOF once the input is
// exhausted at a value boundary.
type Reader interface {
	Next() (Value, error)
}

// Writer consumes values. BeginList/EndList bracket the elements of a single
// list whose length is not known up front.
type Writer interface {
	Write(v Value) error
	BeginList() error
	EndList() error
}

// Seq exposes a Reader as a lazy sequence. Reading stops at the first error;
// a non-EOF error is stored in errp.
func Seq(r Reader, errp *error) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for {
			v, err := r.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) && errp != nil {
					*errp = err
				}
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}
