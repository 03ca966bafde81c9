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

import "github.com/wiltonlazary/gaffer/x"

// Serialised vertices are byte-stuffed so they never contain the row
// delimiter: 0x00 becomes 0x01 0x41 and the escape character 0x01
// becomes 0x01 0x42.
const (
	escapeChar       = byte(0x01)
	escapedDelimiter = byte(0x41)
	escapedEscape    = byte(0x42)
)

// Escape byte-stuffs a serialised vertex for embedding in a row.
func Escape(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch c {
		case Delimiter:
			out = append(out, escapeChar, escapedDelimiter)
		case escapeChar:
			out = append(out, escapeChar, escapedEscape)
		default:
			out = append(out, c)
		}
	}
	return out
}

// Unescape reverses Escape.
func Unescape(b []byte) ([]byte, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != escapeChar {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(b) {
			return nil, x.Codecf("truncated escape sequence")
		}
		switch b[i] {
		case escapedDelimiter:
			out = append(out, Delimiter)
		case escapedEscape:
			out = append(out, escapeChar)
		default:
			return nil, x.Codecf("bad escape sequence 0x%02x", b[i])
		}
	}
	return out, nil
}

// SplitRow breaks a row into its delimiter-separated segments without
// unescaping them.
func SplitRow(row []byte) [][]byte {
	var parts [][]byte
	start := 0
	for i, c := range row {
		if c == Delimiter {
			parts = append(parts, row[start:i])
			start = i + 1
		}
	}
	return append(parts, row[start:])
}
