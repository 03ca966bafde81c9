/*
 * Copyright 2016 Crown Copyright
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalRoundTrip(t *testing.T) {
	vals := []Value{
		String(""),
		String("vertex-1"),
		Int(0),
		Int(-42),
		Int(math.MaxInt64),
		Int(math.MinInt64),
		Float(3.5),
		Float(-2.25),
		Bool(true),
		Bool(false),
		Raw([]byte{0x00, 0x01, 0xFF}),
	}
	for _, v := range vals {
		data, err := v.Marshal()
		require.NoError(t, err)
		got, err := Unmarshal(v.Tid, data)
		require.NoError(t, err)
		require.True(t, Equal(v, got), "round trip changed %v to %v", v, got)
	}
}

func TestIntMarshalPreservesOrder(t *testing.T) {
	ints := []int64{math.MinInt64, -100000, -1, 0, 1, 7, 100000, math.MaxInt64}
	var prev []byte
	for _, i := range ints {
		data, err := Int(i).Marshal()
		require.NoError(t, err)
		if prev != nil {
			require.Negative(t, bytes.Compare(prev, data),
				"encoding order broken at %d", i)
		}
		prev = data
	}
}

func TestFloatMarshalPreservesOrder(t *testing.T) {
	floats := []float64{math.Inf(-1), -1e10, -1.5, -0.0001, 0, 0.0001, 1.5, 1e10, math.Inf(1)}
	var prev []byte
	for _, f := range floats {
		data, err := Float(f).Marshal()
		require.NoError(t, err)
		if prev != nil {
			require.Negative(t, bytes.Compare(prev, data),
				"encoding order broken at %g", f)
		}
		prev = data
	}
}

func TestCompareMixedTypes(t *testing.T) {
	_, err := Compare(Int(1), String("1"))
	require.Error(t, err)
}

func TestAggregators(t *testing.T) {
	sum, err := GetAggregator("sum")
	require.NoError(t, err)
	v, err := sum.Apply(Int(3), Int(4))
	require.NoError(t, err)
	require.EqualValues(t, 7, v.Int)

	_, err = sum.Apply(Bool(true), Bool(false))
	require.Error(t, err)

	max, err := GetAggregator("max")
	require.NoError(t, err)
	v, err = max.Apply(Int(2), Int(5))
	require.NoError(t, err)
	require.EqualValues(t, 5, v.Int)

	min, err := GetAggregator("min")
	require.NoError(t, err)
	v, err = min.Apply(String("b"), String("a"))
	require.NoError(t, err)
	require.Equal(t, "a", v.Str)

	first, err := GetAggregator("first")
	require.NoError(t, err)
	v, err = first.Apply(Int(9), Int(1))
	require.NoError(t, err)
	require.EqualValues(t, 9, v.Int)

	_, err = GetAggregator("nope")
	require.Error(t, err)
}

func TestEncbufDecbuf(t *testing.T) {
	var e Encbuf
	e.PutByte(7)
	e.PutUvarint(300)
	e.PutBytes([]byte("abc"))
	e.PutString("def")
	require.NoError(t, e.PutValue(Int(-5)))

	d := NewDecbuf(e.Bytes())
	require.Equal(t, byte(7), d.Byte())
	require.EqualValues(t, 300, d.Uvarint())
	require.Equal(t, []byte("abc"), d.Bytes())
	require.Equal(t, "def", d.String())
	v := d.Value()
	require.NoError(t, d.Err())
	require.True(t, Equal(Int(-5), v))
	require.Zero(t, d.Len())

	// Reads past the end stick as errors.
	d.Byte()
	require.Error(t, d.Err())
}
