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

package iterators

import (
	"bytes"
	"sort"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

// newAggregation collapses entries sharing an aggregation key by
// applying each non-group-by property's declared aggregator. A view
// group-by override narrows the key at query time, merging across
// column qualifiers; the emitted entry keeps the newest member's full
// qualifier so the wire format stays decodable.
func newAggregation(opts map[string]string, src tablet.EntryStream) (tablet.EntryStream, error) {
	env, err := newStageEnv(opts, true)
	if err != nil {
		return nil, err
	}
	return &aggStream{env: env, src: src}, nil
}

type aggStream struct {
	env *stageEnv
	src tablet.EntryStream

	lookahead *tablet.Entry
	out       []tablet.Entry
	err       error
	done      bool
}

func (a *aggStream) Next() (tablet.Entry, bool, error) {
	for len(a.out) == 0 {
		if a.err != nil {
			return tablet.Entry{}, false, a.err
		}
		if a.done {
			return tablet.Entry{}, false, nil
		}
		if err := a.fillRun(); err != nil {
			a.err = err
			return tablet.Entry{}, false, err
		}
	}
	e := a.out[0]
	a.out = a.out[1:]
	return e, true, nil
}

func (a *aggStream) Close() { a.src.Close() }

func (a *aggStream) pull() (tablet.Entry, bool, error) {
	if a.lookahead != nil {
		e := *a.lookahead
		a.lookahead = nil
		return e, true, nil
	}
	return a.src.Next()
}

// fillRun buffers one (row, colFamily) run, merges it, and queues the
// merged entries.
func (a *aggStream) fillRun() error {
	first, ok, err := a.pull()
	if err != nil {
		return err
	}
	if !ok {
		a.done = true
		return nil
	}
	run := []tablet.Entry{first}
	for {
		e, ok, err := a.src.Next()
		if err != nil {
			return err
		}
		if !ok {
			a.done = true
			break
		}
		if !bytes.Equal(e.Key.Row, first.Key.Row) ||
			!bytes.Equal(e.Key.ColFamily, first.Key.ColFamily) {
			a.lookahead = &e
			break
		}
		run = append(run, e)
	}
	return a.mergeRun(run)
}

func (a *aggStream) mergeRun(run []tablet.Entry) error {
	group := string(run[0].Key.ColFamily)
	g, ok := a.env.schema.Group(group)
	if !ok {
		return x.Storef("stored entry names unknown group %q", group)
	}
	groupBy := g.GroupBy
	if gv := a.env.view.Group(group); gv != nil && gv.HasGroupBy {
		groupBy = gv.GroupBy
	}

	// Bucket members by (narrowed qualifier, visibility).
	type bucket struct {
		members []tablet.Entry
	}
	buckets := make(map[string]*bucket)
	var order []string
	for _, e := range run {
		nq := e.Key.ColQualifier
		if !equalStrings(groupBy, g.GroupBy) {
			props, err := a.env.conv.PropsFromQualifier(g, e.Key.ColQualifier, g.GroupBy)
			if err != nil {
				return err
			}
			if nq, err = a.env.conv.QualifierFromProps(g, props, groupBy); err != nil {
				return err
			}
		}
		key := string(nq) + "\x00" + string(e.Key.ColVisibility)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
			order = append(order, key)
		}
		b.members = append(b.members, e)
	}

	var merged []tablet.Entry
	for _, key := range order {
		e, err := a.mergeBucket(g, buckets[key].members)
		if err != nil {
			return err
		}
		merged = append(merged, e)
	}
	sort.Slice(merged, func(i, j int) bool {
		if c := bytes.Compare(merged[i].Key.ColQualifier, merged[j].Key.ColQualifier); c != 0 {
			return c < 0
		}
		return bytes.Compare(merged[i].Key.ColVisibility, merged[j].Key.ColVisibility) < 0
	})
	a.out = append(a.out, merged...)
	return nil
}

// mergeBucket folds members newest-first under the declared
// aggregators. Properties without an aggregator keep the newest value.
func (a *aggStream) mergeBucket(g *schema.Group, members []tablet.Entry) (tablet.Entry, error) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Key.Timestamp > members[j].Key.Timestamp
	})
	newest := members[0]
	if len(members) == 1 {
		return newest, nil
	}

	acc, err := a.env.conv.PropsFromValue(g, newest.Value)
	if err != nil {
		return tablet.Entry{}, err
	}
	for _, e := range members[1:] {
		next, err := a.env.conv.PropsFromValue(g, e.Value)
		if err != nil {
			return tablet.Entry{}, err
		}
		if err := mergeProps(g, acc, next); err != nil {
			return tablet.Entry{}, err
		}
		x.NumEntriesAggregated.Inc()
	}

	value, err := a.env.conv.ValueFromProps(g, acc)
	if err != nil {
		return tablet.Entry{}, err
	}
	return tablet.Entry{Key: newest.Key, Value: value}, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// mergeProps folds the older property set into the newer accumulator.
func mergeProps(g *schema.Group, acc, older element.Properties) error {
	for _, p := range g.ValueProps() {
		newer, hasNewer := acc[p.Name]
		old, hasOlder := older[p.Name]
		switch {
		case !hasOlder:
		case !hasNewer:
			acc[p.Name] = old
		default:
			name := p.Aggregator
			if name == "" {
				name = "first"
			}
			agg, err := types.GetAggregator(name)
			if err != nil {
				return err
			}
			v, err := agg.Apply(newer, old)
			if err != nil {
				return err
			}
			acc[p.Name] = v
		}
	}
	return nil
}
