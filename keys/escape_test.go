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

package keys

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeReservesDelimiter(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00},
		{0x01},
		{0x00, 0x01, 0x00},
		[]byte("plain"),
		{0xFF, 0x00, 0xFE, 0x01},
	}
	for _, in := range inputs {
		esc := Escape(in)
		require.NotContains(t, esc, Delimiter, "escaped bytes may not contain the delimiter")
		got, err := Unescape(esc)
		require.NoError(t, err)
		require.True(t, bytes.Equal(in, got) || (len(in) == 0 && len(got) == 0))
	}
}

func TestUnescapeRejectsBadSequences(t *testing.T) {
	_, err := Unescape([]byte{0x01})
	require.Error(t, err)
	_, err = Unescape([]byte{0x01, 0x99})
	require.Error(t, err)
}

func TestSplitRow(t *testing.T) {
	row := append(append([]byte("ab"), Delimiter), append([]byte("cd"), Delimiter, 0x02)...)
	parts := SplitRow(row)
	require.Len(t, parts, 3)
	require.Equal(t, []byte("ab"), parts[0])
	require.Equal(t, []byte("cd"), parts[1])
	require.Equal(t, []byte{0x02}, parts[2])
}
