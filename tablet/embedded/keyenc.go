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

package embedded

import (
	"encoding/binary"

	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/x"
)

// Badger keys pack (table, row, colFamily, colQualifier, colVisibility,
// inverted timestamp, sequence) into one byte string whose order is
// (row asc, cf asc, cq asc, cv asc, timestamp desc). Fields use the
// usual order-preserving tuple encoding: 0x00 inside a field becomes
// 0x00 0xFF, fields end with 0x00 0x01. The encoding is prefix- and
// order-preserving over each field, so row ranges translate directly.

const (
	escByte  = byte(0x00)
	escShift = byte(0xFF)
	termByte = byte(0x01)
)

func appendEscaped(dst, field []byte) []byte {
	for _, c := range field {
		if c == escByte {
			dst = append(dst, escByte, escShift)
		} else {
			dst = append(dst, c)
		}
	}
	return dst
}

func appendField(dst, field []byte) []byte {
	dst = appendEscaped(dst, field)
	return append(dst, escByte, termByte)
}

// encodeKey builds the full badger key for one stored cell. seq makes
// concurrent writes to the same aggregation key distinct entries until
// an iterator merges them.
func encodeKey(table string, k tablet.Key, seq uint64) []byte {
	b := appendField(nil, []byte(table))
	b = appendField(b, k.Row)
	b = appendField(b, k.ColFamily)
	b = appendField(b, k.ColQualifier)
	b = appendField(b, k.ColVisibility)
	var ts [16]byte
	binary.BigEndian.PutUint64(ts[:8], ^k.Timestamp)
	binary.BigEndian.PutUint64(ts[8:], seq)
	return append(b, ts[:]...)
}

// tablePrefix is the common prefix of every key in a table.
func tablePrefix(table string) []byte {
	return appendField(nil, []byte(table))
}

// scanStart positions a scan at the first possible cell with row >= row
// inside the table.
func scanStart(table string, row []byte) []byte {
	return appendEscaped(tablePrefix(table), row)
}

func readField(b []byte) (field, rest []byte, err error) {
	for i := 0; i < len(b); i++ {
		if b[i] != escByte {
			field = append(field, b[i])
			continue
		}
		if i+1 >= len(b) {
			return nil, nil, x.Storef("truncated key field")
		}
		switch b[i+1] {
		case escShift:
			field = append(field, escByte)
			i++
		case termByte:
			return field, b[i+2:], nil
		default:
			return nil, nil, x.Storef("corrupt key field escape 0x%02x", b[i+1])
		}
	}
	return nil, nil, x.Storef("unterminated key field")
}

// decodeKey parses a badger key back into its table and cell key.
func decodeKey(b []byte) (table string, k tablet.Key, seq uint64, err error) {
	var f []byte
	if f, b, err = readField(b); err != nil {
		return "", tablet.Key{}, 0, err
	}
	table = string(f)
	if k.Row, b, err = readField(b); err != nil {
		return "", tablet.Key{}, 0, err
	}
	if k.ColFamily, b, err = readField(b); err != nil {
		return "", tablet.Key{}, 0, err
	}
	if k.ColQualifier, b, err = readField(b); err != nil {
		return "", tablet.Key{}, 0, err
	}
	if k.ColVisibility, b, err = readField(b); err != nil {
		return "", tablet.Key{}, 0, err
	}
	if len(b) != 16 {
		return "", tablet.Key{}, 0, x.Storef("corrupt key suffix of %d bytes", len(b))
	}
	k.Timestamp = ^binary.BigEndian.Uint64(b[:8])
	seq = binary.BigEndian.Uint64(b[8:])
	return table, k, seq, nil
}
