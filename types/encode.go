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
	"encoding/binary"

	"github.com/wiltonlazary/gaffer/x"
)

// Encbuf builds the uvarint-framed byte sequences used for value bytes,
// column qualifiers and serialised iterator configuration.
type Encbuf struct {
	b []byte
}

func (e *Encbuf) Bytes() []byte { return e.b }
func (e *Encbuf) Len() int      { return len(e.b) }

func (e *Encbuf) PutByte(c byte) { e.b = append(e.b, c) }

func (e *Encbuf) PutUvarint(v uint64) {
	e.b = binary.AppendUvarint(e.b, v)
}

// PutBytes writes a length-prefixed byte field.
func (e *Encbuf) PutBytes(b []byte) {
	e.PutUvarint(uint64(len(b)))
	e.b = append(e.b, b...)
}

func (e *Encbuf) PutString(s string) {
	e.PutUvarint(uint64(len(s)))
	e.b = append(e.b, s...)
}

// PutValue writes a type-tagged, length-prefixed value.
func (e *Encbuf) PutValue(v Value) error {
	data, err := v.Marshal()
	if err != nil {
		return err
	}
	e.PutByte(byte(v.Tid))
	e.PutBytes(data)
	return nil
}

// Decbuf is the reading side of Encbuf. Errors are sticky: after the
// first failure every accessor returns a zero value and Err reports it.
type Decbuf struct {
	b   []byte
	err error
}

func NewDecbuf(b []byte) *Decbuf { return &Decbuf{b: b} }

func (d *Decbuf) Err() error { return d.err }
func (d *Decbuf) Len() int   { return len(d.b) }

func (d *Decbuf) Byte() byte {
	if d.err != nil {
		return 0
	}
	if len(d.b) < 1 {
		d.err = x.Codecf("decode buffer exhausted")
		return 0
	}
	c := d.b[0]
	d.b = d.b[1:]
	return c
}

func (d *Decbuf) Uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.b)
	if n <= 0 {
		d.err = x.Codecf("bad uvarint")
		return 0
	}
	d.b = d.b[n:]
	return v
}

func (d *Decbuf) Bytes() []byte {
	n := d.Uvarint()
	if d.err != nil {
		return nil
	}
	if uint64(len(d.b)) < n {
		d.err = x.Codecf("field length %d exceeds buffer %d", n, len(d.b))
		return nil
	}
	b := d.b[:n]
	d.b = d.b[n:]
	return b
}

func (d *Decbuf) String() string { return string(d.Bytes()) }

func (d *Decbuf) Value() Value {
	tid := TypeID(d.Byte())
	data := d.Bytes()
	if d.err != nil {
		return Value{}
	}
	v, err := Unmarshal(tid, data)
	if err != nil {
		d.err = err
		return Value{}
	}
	return v
}
