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

// Package tablet defines the contract this engine consumes from the
// ordered key-value store underneath it: ranged scans with pluggable
// server-side iterators, a batch writer, and per-cell visibility labels.
package tablet

import (
	"bytes"
	"context"
	"strings"
)

// Key addresses one stored cell. Keys sort by (Row, ColFamily,
// ColQualifier, ColVisibility) ascending, then Timestamp descending.
type Key struct {
	Row           []byte
	ColFamily     []byte
	ColQualifier  []byte
	ColVisibility []byte
	Timestamp     uint64
}

// SameAggregationKey reports whether two keys fall under the same
// aggregation key: equal on everything but the timestamp.
func SameAggregationKey(a, b Key) bool {
	return bytes.Equal(a.Row, b.Row) &&
		bytes.Equal(a.ColFamily, b.ColFamily) &&
		bytes.Equal(a.ColQualifier, b.ColQualifier) &&
		bytes.Equal(a.ColVisibility, b.ColVisibility)
}

// Entry is one key-value pair seen by scans and server-side iterators.
type Entry struct {
	Key   Key
	Value []byte
}

// Mutation is a single-cell put. The engine guarantees per-row
// atomicity for mutations, nothing stronger.
type Mutation struct {
	Key   Key
	Value []byte
}

// Range is a half-open interval [Start, End) over row byte-strings. A
// nil End means unbounded.
type Range struct {
	Start []byte
	End   []byte
}

// Contains reports whether the row falls inside the range.
func (r Range) Contains(row []byte) bool {
	if bytes.Compare(row, r.Start) < 0 {
		return false
	}
	return r.End == nil || bytes.Compare(row, r.End) < 0
}

// IteratorSetting configures one server-side iterator. Lower priorities
// apply closer to the data. Options are string-keyed, so structured
// configuration travels as version-tagged compressed bytes (see
// EncodeConfig).
type IteratorSetting struct {
	Priority int
	Name     string
	Class    string
	Options  map[string]string
}

// Authorisations are the caller's visibility labels.
type Authorisations []string

// Covers reports whether the label expression on a cell is satisfied.
// An empty expression is visible to everyone; otherwise the expression
// is a '|'-separated list of alternatives.
func (a Authorisations) Covers(expr []byte) bool {
	if len(expr) == 0 {
		return true
	}
	for _, alt := range strings.Split(string(expr), "|") {
		for _, label := range a {
			if label == alt {
				return true
			}
		}
	}
	return false
}

// EntryStream is a lazy scan result. Next blocks on I/O; Close releases
// server-side resources and is idempotent.
type EntryStream interface {
	Next() (Entry, bool, error)
	Close()
}

// Scanner runs ranged scans over one table on behalf of one query. It
// is owned by its retriever and not shared.
type Scanner interface {
	// SetRanges replaces the scan ranges. Ranges must be sorted by
	// start key and non-overlapping.
	SetRanges(rs []Range)

	// AddIterator installs a server-side iterator for this scan.
	AddIterator(s IteratorSetting)

	// DisableVersioning turns off the engine's default
	// newest-timestamp-wins collapse, exposing every stored version to
	// the iterator stack. Aggregating scans need this.
	DisableVersioning()

	// Scan opens the stream. Cancelling ctx interrupts an in-progress
	// scan.
	Scan(ctx context.Context) (EntryStream, error)

	// Close releases the scanner. Idempotent.
	Close()
}

// BatchWriter accumulates mutations and submits them in internally
// parallelised flushes. Element order within a batch is not preserved.
type BatchWriter interface {
	Add(m Mutation) error
	// Close flushes outstanding mutations and returns the first flush
	// error, if any.
	Close() error
}

// TableConfig carries the settings derived from the key package at
// table-creation time.
type TableConfig struct {
	// BloomFunctorClass names the key functor the engine should use to
	// extract bloom-filter key prefixes from stored keys.
	BloomFunctorClass string
}

// Connector is the shared handle to the tablet engine, created lazily
// per store instance.
type Connector interface {
	EnsureTable(name string, cfg TableConfig) error
	NewScanner(table string, auths Authorisations) (Scanner, error)
	NewBatchWriter(table string) (BatchWriter, error)
	Close() error
}

// Trait advertises an engine capability the store may rely on.
type Trait int

const (
	TraitOrdered Trait = iota
	TraitAggregation
	TraitStoreValidation
	TraitPreAggregationFiltering
	TraitPostAggregationFiltering
	TraitPostTransformationFiltering
	TraitTransformation
	TraitVisibility
)

// Traits is a capability set.
type Traits map[Trait]bool

func (t Traits) Has(tr Trait) bool { return t[tr] }
