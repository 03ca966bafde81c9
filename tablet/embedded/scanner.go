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
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/x"
)

type scanner struct {
	eng   *Engine
	table string
	auths tablet.Authorisations

	ranges     []tablet.Range
	settings   []tablet.IteratorSetting
	versioning bool
	id         uuid.UUID

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	stream tablet.EntryStream
}

func newScanner(eng *Engine, table string, auths tablet.Authorisations) *scanner {
	return &scanner{
		eng:        eng,
		table:      table,
		auths:      auths,
		versioning: true,
		id:         uuid.New(),
	}
}

func (s *scanner) SetRanges(rs []tablet.Range) { s.ranges = rs }

func (s *scanner) AddIterator(setting tablet.IteratorSetting) {
	s.settings = append(s.settings, setting)
}

func (s *scanner) DisableVersioning() { s.versioning = false }

func (s *scanner) Scan(ctx context.Context) (tablet.EntryStream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, x.Storef("scanner %s already closed", s.id)
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	var stream tablet.EntryStream = newRangeStream(ctx, s.eng, s.table, s.ranges)
	stream = &visibilityStream{src: stream, auths: s.auths}
	if s.versioning {
		stream = &versioningStream{src: stream}
	}

	// Iterators apply in ascending priority, lowest closest to the data.
	sorted := make([]tablet.IteratorSetting, len(s.settings))
	copy(sorted, s.settings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	for _, setting := range sorted {
		build, err := tablet.GetIterator(setting.Class)
		if err != nil {
			stream.Close()
			cancel()
			return nil, err
		}
		if stream, err = build(setting.Options, stream); err != nil {
			stream.Close()
			cancel()
			return nil, err
		}
	}
	glog.V(2).Infof("scan %s: table %q, %d ranges, %d iterators",
		s.id, s.table, len(s.ranges), len(sorted))
	s.stream = stream
	return stream, nil
}

// Close interrupts an in-progress scan and releases the snapshot.
// Idempotent.
func (s *scanner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	if s.stream != nil {
		s.stream.Close()
	}
}

// rangeStream iterates the requested row ranges in order off one badger
// snapshot.
type rangeStream struct {
	ctx    context.Context
	table  string
	ranges []tablet.Range

	txn *badger.Txn
	it  *badger.Iterator

	idx    int
	seeked bool

	mu     sync.Mutex
	closed bool
}

func newRangeStream(ctx context.Context, eng *Engine, table string, ranges []tablet.Range) *rangeStream {
	txn := eng.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = tablePrefix(table)
	return &rangeStream{
		ctx:    ctx,
		table:  table,
		ranges: ranges,
		txn:    txn,
		it:     txn.NewIterator(opts),
	}
}

func (r *rangeStream) Next() (tablet.Entry, bool, error) {
	if r.closed {
		return tablet.Entry{}, false, nil
	}
	for {
		if err := r.ctx.Err(); err != nil {
			return tablet.Entry{}, false, x.Storef("scan interrupted: %v", err)
		}
		if r.idx >= len(r.ranges) {
			return tablet.Entry{}, false, nil
		}
		rng := r.ranges[r.idx]
		if !r.seeked {
			r.it.Seek(scanStart(r.table, rng.Start))
			r.seeked = true
		} else {
			r.it.Next()
		}
		if !r.it.Valid() {
			r.idx = len(r.ranges)
			return tablet.Entry{}, false, nil
		}
		item := r.it.Item()
		table, key, _, err := decodeKey(item.KeyCopy(nil))
		if err != nil {
			return tablet.Entry{}, false, err
		}
		if table != r.table {
			r.idx = len(r.ranges)
			return tablet.Entry{}, false, nil
		}
		if rng.End != nil && bytes.Compare(key.Row, rng.End) >= 0 {
			// Past this range; the same position may open the next one.
			r.idx++
			r.seeked = false
			continue
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return tablet.Entry{}, false, x.Storef("read value: %v", err)
		}
		return tablet.Entry{Key: key, Value: val}, true, nil
	}
}

func (r *rangeStream) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.it.Close()
	r.txn.Discard()
}

// visibilityStream drops cells whose visibility label the caller's
// authorisations do not cover.
type visibilityStream struct {
	src   tablet.EntryStream
	auths tablet.Authorisations
}

func (v *visibilityStream) Next() (tablet.Entry, bool, error) {
	for {
		e, ok, err := v.src.Next()
		if !ok || err != nil {
			return tablet.Entry{}, false, err
		}
		if v.auths.Covers(e.Key.ColVisibility) {
			return e, true, nil
		}
	}
}

func (v *visibilityStream) Close() { v.src.Close() }

// versioningStream keeps only the newest timestamp of each aggregation
// key. Aggregating scans disable it to see every version.
type versioningStream struct {
	src  tablet.EntryStream
	prev *tablet.Key
}

func (v *versioningStream) Next() (tablet.Entry, bool, error) {
	for {
		e, ok, err := v.src.Next()
		if !ok || err != nil {
			return tablet.Entry{}, false, err
		}
		if v.prev != nil && tablet.SameAggregationKey(*v.prev, e.Key) {
			continue
		}
		k := e.Key
		v.prev = &k
		return e, true, nil
	}
}

func (v *versioningStream) Close() { v.src.Close() }
