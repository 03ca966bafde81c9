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
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/x"
)

// flushBatchSize bounds how many mutations one flush carries.
const flushBatchSize = 1000

// batchWriter buffers mutations and flushes them on background
// goroutines. Callers must not rely on write order within a batch.
type batchWriter struct {
	eng   *Engine
	table string
	g     *errgroup.Group

	mu      sync.Mutex
	pending []tablet.Mutation
	closed  bool
}

func newBatchWriter(eng *Engine, table string) *batchWriter {
	g := &errgroup.Group{}
	g.SetLimit(4)
	return &batchWriter{eng: eng, table: table, g: g}
}

// Add enqueues one mutation. A malformed mutation is rejected
// synchronously; the writer stays usable.
func (w *batchWriter) Add(m tablet.Mutation) error {
	if len(m.Key.Row) == 0 {
		return x.Storef("mutation rejected: empty row")
	}
	if len(m.Key.ColFamily) == 0 {
		return x.Storef("mutation rejected: empty column family")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return x.Storef("batch writer already closed")
	}
	w.pending = append(w.pending, m)
	if len(w.pending) >= flushBatchSize {
		w.flushLocked()
	}
	return nil
}

func (w *batchWriter) flushLocked() {
	batch := w.pending
	w.pending = nil
	w.g.Go(func() error {
		wb := w.eng.db.NewWriteBatch()
		defer wb.Cancel()
		for _, m := range batch {
			key := encodeKey(w.table, m.Key, w.eng.nextSeq())
			if err := wb.SetEntry(badger.NewEntry(key, m.Value)); err != nil {
				return x.Storef("batch set: %v", err)
			}
		}
		if err := wb.Flush(); err != nil {
			return x.Storef("batch flush: %v", err)
		}
		glog.V(2).Infof("flushed %d mutations to %q", len(batch), w.table)
		return nil
	})
}

// Close flushes outstanding mutations and returns the first flush
// error.
func (w *batchWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if len(w.pending) > 0 {
		w.flushLocked()
	}
	w.mu.Unlock()
	return w.g.Wait()
}
