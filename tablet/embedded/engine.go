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

// Package embedded implements the tablet contract on a local badger
// instance, including server-side iterator emulation. It backs tests
// and single-node deployments.
package embedded

import (
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/x"
)

// Engine is an embedded tablet engine over badger.
type Engine struct {
	db  *badger.DB
	seq atomic.Uint64

	mu     sync.Mutex
	tables map[string]tablet.TableConfig
}

// Open starts an engine at dir. An empty dir runs badger in memory,
// which is what tests use.
func Open(dir string) (*Engine, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(x.ErrStore, "open badger at %q: %v", dir, err)
	}
	return &Engine{
		db:     db,
		tables: make(map[string]tablet.TableConfig),
	}, nil
}

// EnsureTable creates the table if missing. Idempotent.
func (e *Engine) EnsureTable(name string, cfg tablet.TableConfig) error {
	if name == "" {
		return x.Storef("empty table name")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.tables[name]; !ok {
		e.tables[name] = cfg
		glog.V(2).Infof("created table %q (bloom functor %q)", name, cfg.BloomFunctorClass)
	}
	return nil
}

func (e *Engine) hasTable(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.tables[name]
	return ok
}

// NewScanner returns a per-query scanner over one table.
func (e *Engine) NewScanner(table string, auths tablet.Authorisations) (tablet.Scanner, error) {
	if !e.hasTable(table) {
		return nil, x.Storef("unknown table %q", table)
	}
	return newScanner(e, table, auths), nil
}

// NewBatchWriter returns a batch writer for one table.
func (e *Engine) NewBatchWriter(table string) (tablet.BatchWriter, error) {
	if !e.hasTable(table) {
		return nil, x.Storef("unknown table %q", table)
	}
	return newBatchWriter(e, table), nil
}

// Close shuts the engine down.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return errors.Wrapf(x.ErrStore, "close badger: %v", err)
	}
	return nil
}

func (e *Engine) nextSeq() uint64 { return e.seq.Add(1) }
