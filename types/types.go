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
	"encoding/binary"
	"math"
	"strings"

	"github.com/wiltonlazary/gaffer/x"
)

// TypeID identifies the declared type of a property or vertex value.
type TypeID byte

const (
	StringID TypeID = iota + 1
	IntID
	FloatID
	BoolID
	BytesID
)

// FromString maps a schema type name to its TypeID.
func FromString(name string) (TypeID, error) {
	switch name {
	case "string":
		return StringID, nil
	case "int", "long":
		return IntID, nil
	case "float", "double":
		return FloatID, nil
	case "bool", "boolean":
		return BoolID, nil
	case "bytes":
		return BytesID, nil
	}
	return 0, x.Schemaf("unknown type name %q", name)
}

func (t TypeID) String() string {
	switch t {
	case StringID:
		return "string"
	case IntID:
		return "int"
	case FloatID:
		return "float"
	case BoolID:
		return "bool"
	case BytesID:
		return "bytes"
	}
	return "unknown"
}

// Value is a typed property or vertex value.
type Value struct {
	Tid   TypeID
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Bytes []byte
}

func String(s string) Value  { return Value{Tid: StringID, Str: s} }
func Int(v int64) Value      { return Value{Tid: IntID, Int: v} }
func Float(v float64) Value  { return Value{Tid: FloatID, Float: v} }
func Bool(v bool) Value      { return Value{Tid: BoolID, Bool: v} }
func Raw(b []byte) Value     { return Value{Tid: BytesID, Bytes: b} }

const signFlip = uint64(1) << 63

// Marshal serialises v into bytes whose lexicographic order matches the
// natural order of the value. Vertex identifiers and ordered group-by
// properties rely on this.
func (v Value) Marshal() ([]byte, error) {
	switch v.Tid {
	case StringID:
		return []byte(v.Str), nil
	case BytesID:
		return v.Bytes, nil
	case IntID:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(v.Int)^signFlip)
		return buf[:], nil
	case FloatID:
		bits := math.Float64bits(v.Float)
		if bits&signFlip != 0 {
			bits = ^bits
		} else {
			bits |= signFlip
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], bits)
		return buf[:], nil
	case BoolID:
		if v.Bool {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	}
	return nil, x.Codecf("cannot marshal value of type %d", v.Tid)
}

// Unmarshal decodes data produced by Marshal for the given type.
func Unmarshal(tid TypeID, data []byte) (Value, error) {
	switch tid {
	case StringID:
		return String(string(data)), nil
	case BytesID:
		b := make([]byte, len(data))
		copy(b, data)
		return Raw(b), nil
	case IntID:
		if len(data) != 8 {
			return Value{}, x.Codecf("int value has %d bytes, want 8", len(data))
		}
		return Int(int64(binary.BigEndian.Uint64(data) ^ signFlip)), nil
	case FloatID:
		if len(data) != 8 {
			return Value{}, x.Codecf("float value has %d bytes, want 8", len(data))
		}
		bits := binary.BigEndian.Uint64(data)
		if bits&signFlip != 0 {
			bits &^= signFlip
		} else {
			bits = ^bits
		}
		return Float(math.Float64frombits(bits)), nil
	case BoolID:
		if len(data) != 1 {
			return Value{}, x.Codecf("bool value has %d bytes, want 1", len(data))
		}
		return Bool(data[0] != 0), nil
	}
	return Value{}, x.Codecf("cannot unmarshal value of type %d", tid)
}

// Compare orders two values of the same type. Mixed types are an error.
func Compare(a, b Value) (int, error) {
	if a.Tid != b.Tid {
		return 0, x.Operationf("cannot compare %s with %s", a.Tid, b.Tid)
	}
	switch a.Tid {
	case StringID:
		return strings.Compare(a.Str, b.Str), nil
	case BytesID:
		return bytes.Compare(a.Bytes, b.Bytes), nil
	case IntID:
		switch {
		case a.Int < b.Int:
			return -1, nil
		case a.Int > b.Int:
			return 1, nil
		}
		return 0, nil
	case FloatID:
		switch {
		case a.Float < b.Float:
			return -1, nil
		case a.Float > b.Float:
			return 1, nil
		}
		return 0, nil
	case BoolID:
		switch {
		case !a.Bool && b.Bool:
			return -1, nil
		case a.Bool && !b.Bool:
			return 1, nil
		}
		return 0, nil
	}
	return 0, x.Operationf("cannot compare values of type %d", a.Tid)
}

// Equal reports whether two values are the same type and value.
func Equal(a, b Value) bool {
	c, err := Compare(a, b)
	return err == nil && c == 0
}
