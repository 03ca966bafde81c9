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

package element

// Stream is a lazy, single-pass, finite sequence of elements. Next may
// block on I/O. Close releases underlying scanners and is idempotent;
// after Close, Next returns false.
type Stream interface {
	Next() bool
	Element() Element
	Err() error
	Close()
}

// SliceStream adapts a slice of elements to the Stream interface.
type SliceStream struct {
	elems []Element
	pos   int
}

func NewSliceStream(elems ...Element) *SliceStream {
	return &SliceStream{elems: elems}
}

func (s *SliceStream) Next() bool {
	if s.pos >= len(s.elems) {
		return false
	}
	s.pos++
	return true
}

func (s *SliceStream) Element() Element { return s.elems[s.pos-1] }
func (s *SliceStream) Err() error       { return nil }
func (s *SliceStream) Close()           { s.pos = len(s.elems) }

// Collect drains a stream into a slice and closes it.
func Collect(s Stream) ([]Element, error) {
	defer s.Close()
	var out []Element
	for s.Next() {
		out = append(out, s.Element())
	}
	return out, s.Err()
}
