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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiltonlazary/gaffer/tablet"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, eng.Close()) })
	require.NoError(t, eng.EnsureTable("graph", tablet.TableConfig{}))
	return eng
}

func write(t *testing.T, eng *Engine, ms ...tablet.Mutation) {
	t.Helper()
	w, err := eng.NewBatchWriter("graph")
	require.NoError(t, err)
	for _, m := range ms {
		require.NoError(t, w.Add(m))
	}
	require.NoError(t, w.Close())
}

func scanAll(t *testing.T, eng *Engine, cfg func(tablet.Scanner)) []tablet.Entry {
	t.Helper()
	sc, err := eng.NewScanner("graph", tablet.Authorisations{"public"})
	require.NoError(t, err)
	defer sc.Close()
	sc.SetRanges([]tablet.Range{{Start: []byte{}}})
	if cfg != nil {
		cfg(sc)
	}
	stream, err := sc.Scan(context.Background())
	require.NoError(t, err)
	var out []tablet.Entry
	for {
		e, ok, err := stream.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, e)
	}
}

func mut(row string, cf string, cq string, cv string, ts uint64, val string) tablet.Mutation {
	return tablet.Mutation{
		Key: tablet.Key{
			Row:           []byte(row),
			ColFamily:     []byte(cf),
			ColQualifier:  []byte(cq),
			ColVisibility: []byte(cv),
			Timestamp:     ts,
		},
		Value: []byte(val),
	}
}

func TestKeyEncodeDecodeRoundTrip(t *testing.T) {
	k := tablet.Key{
		Row:           []byte{0x01, 0x00, 0x02},
		ColFamily:     []byte("e"),
		ColQualifier:  []byte{0x00},
		ColVisibility: []byte("public"),
		Timestamp:     42,
	}
	enc := encodeKey("graph", k, 7)
	table, got, seq, err := decodeKey(enc)
	require.NoError(t, err)
	require.Equal(t, "graph", table)
	require.Equal(t, k.Row, got.Row)
	require.Equal(t, k.ColFamily, got.ColFamily)
	require.Equal(t, k.ColQualifier, got.ColQualifier)
	require.Equal(t, k.ColVisibility, got.ColVisibility)
	require.EqualValues(t, 42, got.Timestamp)
	require.EqualValues(t, 7, seq)
}

func TestScanOrderAndRanges(t *testing.T) {
	eng := testEngine(t)
	write(t, eng,
		mut("b", "g", "", "", 1, "vb"),
		mut("a", "g", "", "", 1, "va"),
		mut("c", "g", "", "", 1, "vc"),
	)

	all := scanAll(t, eng, nil)
	require.Len(t, all, 3)
	require.Equal(t, []byte("a"), all[0].Key.Row)
	require.Equal(t, []byte("b"), all[1].Key.Row)
	require.Equal(t, []byte("c"), all[2].Key.Row)

	sc, err := eng.NewScanner("graph", nil)
	require.NoError(t, err)
	defer sc.Close()
	sc.SetRanges([]tablet.Range{{Start: []byte("b"), End: []byte("c")}})
	stream, err := sc.Scan(context.Background())
	require.NoError(t, err)
	e, ok, err := stream.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("b"), e.Key.Row)
	_, ok, err = stream.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVersioningKeepsNewest(t *testing.T) {
	eng := testEngine(t)
	write(t, eng,
		mut("r", "g", "q", "", 1, "old"),
		mut("r", "g", "q", "", 9, "new"),
		mut("r", "g", "q2", "", 5, "other"),
	)

	entries := scanAll(t, eng, nil)
	require.Len(t, entries, 2)
	require.Equal(t, []byte("new"), entries[0].Value)
	require.EqualValues(t, 9, entries[0].Key.Timestamp)
	require.Equal(t, []byte("other"), entries[1].Value)

	raw := scanAll(t, eng, func(sc tablet.Scanner) { sc.DisableVersioning() })
	require.Len(t, raw, 3, "versioning off exposes every version")
	require.Equal(t, []byte("new"), raw[0].Value, "newest timestamp first")
}

func TestVisibilityFiltering(t *testing.T) {
	eng := testEngine(t)
	write(t, eng,
		mut("r1", "g", "", "public", 1, "open"),
		mut("r2", "g", "", "secret", 1, "hidden"),
		mut("r3", "g", "", "", 1, "unlabelled"),
	)

	entries := scanAll(t, eng, nil)
	require.Len(t, entries, 2)
	require.Equal(t, []byte("open"), entries[0].Value)
	require.Equal(t, []byte("unlabelled"), entries[1].Value)
}

func TestWriterRejectsMalformedMutation(t *testing.T) {
	eng := testEngine(t)
	w, err := eng.NewBatchWriter("graph")
	require.NoError(t, err)
	require.Error(t, w.Add(tablet.Mutation{}))
	require.NoError(t, w.Add(mut("r", "g", "", "", 1, "v")))
	require.NoError(t, w.Close())
	require.Error(t, w.Add(mut("r", "g", "", "", 1, "v")), "closed writer rejects adds")
}

func TestUnknownTable(t *testing.T) {
	eng := testEngine(t)
	_, err := eng.NewScanner("nope", nil)
	require.Error(t, err)
	_, err = eng.NewBatchWriter("nope")
	require.Error(t, err)
}

func TestScannerCancellation(t *testing.T) {
	eng := testEngine(t)
	write(t, eng, mut("a", "g", "", "", 1, "v"))

	sc, err := eng.NewScanner("graph", nil)
	require.NoError(t, err)
	sc.SetRanges([]tablet.Range{{Start: []byte{}}})
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := sc.Scan(ctx)
	require.NoError(t, err)
	cancel()
	_, _, err = stream.Next()
	require.Error(t, err, "cancelled scans surface an error")
	sc.Close()
	sc.Close() // idempotent
}