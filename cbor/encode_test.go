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

package cbor_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/gobits/cbor"
)

type encodeTestDefinition struct {
	CborHex string
	Object  any
}

var encodeTests = []encodeTestDefinition{
	// Simple list of numbers
	{
		CborHex: "83010203",
		Object:  []any{1, 2, 3},
	},
	// Negative numbers use the negative integer major type
	{
		CborHex: "8220390100",
		Object:  []int64{-1, -257},
	},
	// Map keys are sorted
	{
		CborHex: "a2616101616202",
		Object:  map[string]int{"b": 2, "a": 1},
	},
}

func TestEncode(t *testing.T) {
	for _, test := range encodeTests {
		cborData, err := cbor.Encode(test.Object)
		if err != nil {
			t.Fatalf("failed to encode object to CBOR: %s", err)
		}
		cborHex := hex.EncodeToString(cborData)
		if cborHex != test.CborHex {
			t.Fatalf(
				"object did not encode to expected CBOR\n  got: %s\n  wanted: %s",
				cborHex,
				test.CborHex,
			)
		}
	}
}

func TestListWriter(t *testing.T) {
	var buf bytes.Buffer
	lw := cbor.NewListWriter(&buf)
	require.NoError(t, lw.Write(1))
	require.NoError(t, lw.WriteRaw([]byte{0x02}))
	require.NoError(t, lw.Write([]int{3}))
	require.NoError(t, lw.Close())
	assert.Equal(t, "9f01028103ff", hex.EncodeToString(buf.Bytes()))

	// The result decodes as an ordinary list
	var dest []any
	_, err := cbor.Decode(buf.Bytes(), &dest)
	require.NoError(t, err)
	assert.Len(t, dest, 3)
}

func TestListWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	lw := cbor.NewListWriter(&buf)
	require.NoError(t, lw.Close())
	assert.Equal(t, "9fff", hex.EncodeToString(buf.Bytes()))
}

func TestListWriterClosed(t *testing.T) {
	var buf bytes.Buffer
	lw := cbor.NewListWriter(&buf)
	require.NoError(t, lw.Close())
	require.NoError(t, lw.Close())
	assert.ErrorIs(t, lw.Write(1), cbor.ErrListClosed)
	assert.Equal(t, "9fff", hex.EncodeToString(buf.Bytes()))
}

func TestListWriterNothingWrittenBeforeFirstItem(t *testing.T) {
	var buf bytes.Buffer
	_ = cbor.NewListWriter(&buf)
	assert.Zero(t, buf.Len())
}
