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

package store

import (
	"bytes"
	"context"

	"github.com/dgryski/go-farm"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/view"
	"github.com/wiltonlazary/gaffer/x"
)

// retriever drives one scan: it opens the stream, decodes entries,
// drops groups the view excludes, deduplicates the two row forms of
// each edge, and applies any client-side verification the handler
// installed. It is a lazy, single-pass, finite element stream.
type retriever struct {
	scanner tablet.Scanner
	stream  tablet.EntryStream
	conv    keys.Converter
	sch     *schema.Schema
	view    *view.View

	matchedHint bool
	verify      func(element.Element) bool

	seen   map[uint64]struct{}
	cur    element.Element
	err    error
	closed bool
}

func newRetriever(ctx context.Context, scanner tablet.Scanner, conv keys.Converter,
	sch *schema.Schema, v *view.View, matchedHint bool,
	verify func(element.Element) bool) (*retriever, error) {
	stream, err := scanner.Scan(ctx)
	if err != nil {
		scanner.Close()
		return nil, err
	}
	return &retriever{
		scanner:     scanner,
		stream:      stream,
		conv:        conv,
		sch:         sch,
		view:        v,
		matchedHint: matchedHint,
		verify:      verify,
		seen:        make(map[uint64]struct{}),
	}, nil
}

func (r *retriever) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	for {
		entry, ok, err := r.stream.Next()
		if err != nil {
			r.err = err
			return false
		}
		if !ok {
			return false
		}
		el, err := r.conv.ElementFromKeyValue(entry.Key, entry.Value, r.matchedHint)
		if err != nil {
			r.err = err
			return false
		}
		if r.view.Group(el.ElementGroup()) == nil {
			continue
		}
		if e, isEdge := el.(*element.Edge); isEdge {
			fp, err := r.edgeFingerprint(e)
			if err != nil {
				r.err = err
				return false
			}
			if _, dup := r.seen[fp]; dup {
				continue
			}
			r.seen[fp] = struct{}{}
		}
		if r.verify != nil && !r.verify(el) {
			continue
		}
		x.NumElementsRetrieved.Inc()
		r.cur = el
		return true
	}
}

func (r *retriever) Element() element.Element { return r.cur }
func (r *retriever) Err() error               { return r.err }

// Close releases the scanner and any server-side resources.
// Idempotent.
func (r *retriever) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.stream.Close()
	r.scanner.Close()
}

// edgeFingerprint names an edge's aggregation identity independently
// of which row form it was decoded from: group, directedness, the two
// endpoints (order-insensitive for undirected edges) and the group-by
// tuple. Two distinct logical edges between the same endpoints differ
// in their group-by values and keep distinct fingerprints.
func (r *retriever) edgeFingerprint(e *element.Edge) (uint64, error) {
	src, err := e.Source.Marshal()
	if err != nil {
		return 0, err
	}
	dst, err := e.Destination.Marshal()
	if err != nil {
		return 0, err
	}
	if !e.Directed && bytes.Compare(dst, src) < 0 {
		src, dst = dst, src
	}
	var cq []byte
	if g, ok := r.sch.Group(e.Group); ok {
		if cq, err = r.conv.QualifierFromProps(g, e.Properties, g.GroupBy); err != nil {
			return 0, err
		}
	}
	buf := make([]byte, 0, len(e.Group)+len(src)+len(dst)+len(cq)+4)
	buf = append(buf, e.Group...)
	buf = append(buf, 0)
	if e.Directed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, 0)
	buf = append(buf, src...)
	buf = append(buf, 0)
	buf = append(buf, dst...)
	buf = append(buf, 0)
	buf = append(buf, cq...)
	return farm.Fingerprint64(buf), nil
}

// SeedStream projects an edge stream onto the far endpoints, each
// vertex emitted once.
type SeedStream struct {
	src  element.Stream
	seen map[uint64]struct{}
	cur  element.EntitySeed
}

func newSeedStream(src element.Stream) *SeedStream {
	return &SeedStream{src: src, seen: make(map[uint64]struct{})}
}

func (s *SeedStream) Next() bool {
	for s.src.Next() {
		edge, ok := s.src.Element().(*element.Edge)
		if !ok {
			continue
		}
		far := edge.FarEnd()
		raw, err := far.Marshal()
		if err != nil {
			continue
		}
		fp := farm.Fingerprint64(raw)
		if _, dup := s.seen[fp]; dup {
			continue
		}
		s.seen[fp] = struct{}{}
		s.cur = element.EntitySeed{Vertex: far}
		return true
	}
	return false
}

func (s *SeedStream) Seed() element.EntitySeed { return s.cur }
func (s *SeedStream) Err() error               { return s.src.Err() }
func (s *SeedStream) Close()                   { s.src.Close() }
