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
	"sort"

	"github.com/dgraph-io/ristretto/v2/z"
	"github.com/dgryski/go-farm"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/operation"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/view"
	"github.com/wiltonlazary/gaffer/x"
)

// scanSpec is everything a handler needs to turn into a configured
// scanner: ranges, the view, and which iterator stages to install.
type scanSpec struct {
	view   *view.View
	ranges []tablet.Range

	// aggView, when set, replaces the view for the aggregation
	// iterator only (the summarise handler collapses group-bys).
	aggView *view.View

	direction       bool
	includeEntities bool
	includeEdges    operation.IncludeEdgeType
	inOut           operation.InOutType

	bloom     []byte
	bloomBoth bool
}

func (s *Store) normaliseView(v *view.View) (*view.View, error) {
	if v == nil {
		v = view.All(s.schema)
	}
	if err := v.Validate(s.schema); err != nil {
		return nil, err
	}
	if v.IsEmpty() {
		return nil, x.Operationf("view admits no groups")
	}
	return v, nil
}

func normaliseEdges(t operation.IncludeEdgeType) operation.IncludeEdgeType {
	if t == "" {
		return operation.EdgesAll
	}
	return t
}

func normaliseInOut(t operation.InOutType) operation.InOutType {
	if t == "" {
		return operation.InOutEither
	}
	return t
}

// openScanner builds the iterator stack per the store traits and the
// spec, in priority order: validation, aggregation, the filter stages,
// transformation, direction.
func (s *Store) openScanner(u User, spec scanSpec) (tablet.Scanner, error) {
	conn, err := s.connection()
	if err != nil {
		return nil, err
	}
	sc, err := conn.NewScanner(s.props.Table, u.Auths)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			sc.Close()
		}
	}()

	sc.SetRanges(coalesceRanges(spec.ranges))
	itf := s.kp.Iterators()
	traits := s.Traits()

	add := func(setting *tablet.IteratorSetting, err error) error {
		if err != nil {
			return err
		}
		if setting != nil {
			sc.AddIterator(*setting)
		}
		return nil
	}

	if traits.Has(tablet.TraitStoreValidation) {
		if err := add(itf.ValidationSetting(s.schema)); err != nil {
			return nil, err
		}
	}
	if traits.Has(tablet.TraitAggregation) {
		av := spec.aggView
		if av == nil {
			av = spec.view
		}
		if err := add(itf.AggregationSetting(s.schema, av)); err != nil {
			return nil, err
		}
		sc.DisableVersioning()
	}
	if traits.Has(tablet.TraitPreAggregationFiltering) {
		if err := add(itf.PreAggregationFilterSetting(s.schema, spec.view)); err != nil {
			return nil, err
		}
	}
	if traits.Has(tablet.TraitPostAggregationFiltering) {
		if err := add(itf.PostAggregationFilterSetting(s.schema, spec.view)); err != nil {
			return nil, err
		}
	}
	if traits.Has(tablet.TraitTransformation) {
		if err := add(itf.TransformSetting(s.schema, spec.view)); err != nil {
			return nil, err
		}
	}
	if traits.Has(tablet.TraitPostTransformationFiltering) {
		if err := add(itf.PostTransformFilterSetting(s.schema, spec.view)); err != nil {
			return nil, err
		}
	}
	if spec.direction {
		if err := add(itf.DirectionFilterSetting(spec.includeEntities,
			spec.includeEdges, spec.inOut)); err != nil {
			return nil, err
		}
	}
	if spec.bloom != nil {
		if err := add(itf.BloomFilterSetting(s.schema, spec.bloom, spec.bloomBoth)); err != nil {
			return nil, err
		}
	}
	ok = true
	return sc, nil
}

func (s *Store) rangesForSeeds(seeds []element.Seed, opts keys.RangeOptions) ([]tablet.Range, error) {
	rf := s.kp.Ranges()
	var out []tablet.Range
	for _, seed := range seeds {
		rs, err := rf.RangesForSeed(seed, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	return out, nil
}

// coalesceRanges sorts ranges and merges overlapping or adjacent ones.
// The result set of a scan is invariant under this.
func coalesceRanges(ranges []tablet.Range) []tablet.Range {
	if len(ranges) <= 1 {
		return ranges
	}
	sorted := make([]tablet.Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Start, sorted[j].Start) < 0
	})
	out := sorted[:1]
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if last.End == nil || bytes.Compare(r.Start, last.End) <= 0 {
			if last.End != nil && (r.End == nil || bytes.Compare(r.End, last.End) > 0) {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// GetElements fetches everything touching the seeds, subject to the
// view and the inclusion flags.
func (s *Store) GetElements(ctx context.Context, u User,
	op operation.GetElements) (element.Stream, error) {
	v, err := s.normaliseView(op.View)
	if err != nil {
		return nil, err
	}
	includeEdges := normaliseEdges(op.IncludeEdges)
	if !op.IncludeEntities && includeEdges == operation.EdgesNone {
		return nil, x.Operationf("operation includes neither entities nor edges")
	}
	ranges, err := s.rangesForSeeds(op.Seeds, keys.RangeOptions{
		IncludeEntities: op.IncludeEntities,
		IncludeEdges:    includeEdges != operation.EdgesNone,
	})
	if err != nil {
		return nil, err
	}
	sc, err := s.openScanner(u, scanSpec{
		view:            v,
		ranges:          ranges,
		direction:       true,
		includeEntities: op.IncludeEntities,
		includeEdges:    includeEdges,
		inOut:           normaliseInOut(op.InOut),
	})
	if err != nil {
		return nil, err
	}
	return newRetriever(ctx, sc, s.kp.Converter(), s.schema, v, true, seedVerifier(op.Seeds))
}

// GetAllElements scans the whole table.
func (s *Store) GetAllElements(ctx context.Context, u User,
	op operation.GetAllElements) (element.Stream, error) {
	v, err := s.normaliseView(op.View)
	if err != nil {
		return nil, err
	}
	includeEdges := normaliseEdges(op.IncludeEdges)
	if !op.IncludeEntities && includeEdges == operation.EdgesNone {
		return nil, x.Operationf("operation includes neither entities nor edges")
	}
	sc, err := s.openScanner(u, scanSpec{
		view:            v,
		ranges:          []tablet.Range{{Start: []byte{}}},
		direction:       true,
		includeEntities: op.IncludeEntities,
		includeEdges:    includeEdges,
		inOut:           operation.InOutEither,
	})
	if err != nil {
		return nil, err
	}
	return newRetriever(ctx, sc, s.kp.Converter(), s.schema, v, false, nil)
}

// GetAdjacentEntitySeeds walks the seed vertices' edges and returns
// each far endpoint once.
func (s *Store) GetAdjacentEntitySeeds(ctx context.Context, u User,
	op operation.GetAdjacentEntitySeeds) (*SeedStream, error) {
	for _, seed := range op.Seeds {
		if _, ok := seed.(element.EntitySeed); !ok {
			return nil, x.Operationf("adjacency walks take entity seeds, got %T", seed)
		}
	}
	v, err := s.normaliseView(op.View)
	if err != nil {
		return nil, err
	}
	ranges, err := s.rangesForSeeds(op.Seeds, keys.RangeOptions{IncludeEdges: true})
	if err != nil {
		return nil, err
	}
	sc, err := s.openScanner(u, scanSpec{
		view:            v,
		ranges:          ranges,
		direction:       true,
		includeEntities: false,
		includeEdges:    operation.EdgesAll,
		inOut:           normaliseInOut(op.InOut),
	})
	if err != nil {
		return nil, err
	}
	r, err := newRetriever(ctx, sc, s.kp.Converter(), s.schema, v, true, nil)
	if err != nil {
		return nil, err
	}
	return newSeedStream(r), nil
}

// GetElementsWithinSet returns the edges with both endpoints in the
// seed set, and the seed entities. A bloom filter over the set prunes
// server-side; membership is verified exactly on the client.
func (s *Store) GetElementsWithinSet(ctx context.Context, u User,
	op operation.GetElementsWithinSet) (element.Stream, error) {
	v, err := s.normaliseView(op.View)
	if err != nil {
		return nil, err
	}
	includeEdges := normaliseEdges(op.IncludeEdges)
	seeds := entitySeeds(op.Seeds)
	ranges, err := s.rangesForSeeds(seeds, keys.RangeOptions{
		IncludeEntities: op.IncludeEntities,
		IncludeEdges:    includeEdges != operation.EdgesNone,
	})
	if err != nil {
		return nil, err
	}
	set, bloom, err := vertexSet(op.Seeds)
	if err != nil {
		return nil, err
	}
	sc, err := s.openScanner(u, scanSpec{
		view:            v,
		ranges:          ranges,
		direction:       true,
		includeEntities: op.IncludeEntities,
		includeEdges:    includeEdges,
		inOut:           operation.InOutEither,
		bloom:           bloom,
		bloomBoth:       true,
	})
	if err != nil {
		return nil, err
	}
	verify := func(el element.Element) bool {
		e, ok := el.(*element.Edge)
		if !ok {
			return true
		}
		return inSet(set, e.Source) && inSet(set, e.Destination)
	}
	return newRetriever(ctx, sc, s.kp.Converter(), s.schema, v, true, verify)
}

// GetElementsBetweenSets returns edges with the seed end in set A and
// the far end in set B, plus set-A entities.
func (s *Store) GetElementsBetweenSets(ctx context.Context, u User,
	op operation.GetElementsBetweenSets) (element.Stream, error) {
	v, err := s.normaliseView(op.View)
	if err != nil {
		return nil, err
	}
	includeEdges := normaliseEdges(op.IncludeEdges)
	ranges, err := s.rangesForSeeds(entitySeeds(op.SeedsA), keys.RangeOptions{
		IncludeEntities: op.IncludeEntities,
		IncludeEdges:    includeEdges != operation.EdgesNone,
	})
	if err != nil {
		return nil, err
	}
	setB, bloom, err := vertexSet(op.SeedsB)
	if err != nil {
		return nil, err
	}
	sc, err := s.openScanner(u, scanSpec{
		view:            v,
		ranges:          ranges,
		direction:       true,
		includeEntities: op.IncludeEntities,
		includeEdges:    includeEdges,
		inOut:           normaliseInOut(op.InOut),
		bloom:           bloom,
		bloomBoth:       false,
	})
	if err != nil {
		return nil, err
	}
	verify := func(el element.Element) bool {
		e, ok := el.(*element.Edge)
		if !ok {
			return true
		}
		return inSet(setB, e.FarEnd())
	}
	return newRetriever(ctx, sc, s.kp.Converter(), s.schema, v, true, verify)
}

// GetElementsInRanges scans the given vertex ranges.
func (s *Store) GetElementsInRanges(ctx context.Context, u User,
	op operation.GetElementsInRanges) (element.Stream, error) {
	v, err := s.normaliseView(op.View)
	if err != nil {
		return nil, err
	}
	includeEdges := normaliseEdges(op.IncludeEdges)
	ranges, err := s.rangesForSeeds(rangeSeeds(op.Ranges), keys.RangeOptions{
		IncludeEntities: op.IncludeEntities,
		IncludeEdges:    includeEdges != operation.EdgesNone,
	})
	if err != nil {
		return nil, err
	}
	sc, err := s.openScanner(u, scanSpec{
		view:            v,
		ranges:          ranges,
		direction:       true,
		includeEntities: op.IncludeEntities,
		includeEdges:    includeEdges,
		inOut:           operation.InOutEither,
	})
	if err != nil {
		return nil, err
	}
	return newRetriever(ctx, sc, s.kp.Converter(), s.schema, v, false, nil)
}

// SummariseGroupOverRanges aggregates everything in the ranges down to
// one element per row and group, regardless of group-bys.
func (s *Store) SummariseGroupOverRanges(ctx context.Context, u User,
	op operation.SummariseGroupOverRanges) (element.Stream, error) {
	v, err := s.normaliseView(op.View)
	if err != nil {
		return nil, err
	}
	includeEdges := normaliseEdges(op.IncludeEdges)
	ranges, err := s.rangesForSeeds(rangeSeeds(op.Ranges), keys.RangeOptions{
		IncludeEntities: op.IncludeEntities,
		IncludeEdges:    includeEdges != operation.EdgesNone,
	})
	if err != nil {
		return nil, err
	}
	sc, err := s.openScanner(u, scanSpec{
		view:            v,
		aggView:         summariseView(v),
		ranges:          ranges,
		direction:       true,
		includeEntities: op.IncludeEntities,
		includeEdges:    includeEdges,
		inOut:           operation.InOutEither,
	})
	if err != nil {
		return nil, err
	}
	return newRetriever(ctx, sc, s.kp.Converter(), s.schema, v, false, nil)
}

// summariseView clears every group-by so the aggregation iterator
// collapses whole groups.
func summariseView(v *view.View) *view.View {
	out := view.New()
	for name, gv := range v.Entities {
		c := *gv
		c.HasGroupBy = true
		c.GroupBy = nil
		out.Entities[name] = &c
	}
	for name, gv := range v.Edges {
		c := *gv
		c.HasGroupBy = true
		c.GroupBy = nil
		out.Edges[name] = &c
	}
	return out
}

func entitySeeds(seeds []element.EntitySeed) []element.Seed {
	out := make([]element.Seed, len(seeds))
	for i, s := range seeds {
		out[i] = s
	}
	return out
}

func rangeSeeds(ranges []element.RangeSeed) []element.Seed {
	out := make([]element.Seed, len(ranges))
	for i, r := range ranges {
		out[i] = r
	}
	return out
}

// vertexSet builds the exact membership set and the bloom filter the
// server-side prefilter uses. Fingerprints hash the escaped vertex
// segment, matching what the functor extracts from rows.
func vertexSet(seeds []element.EntitySeed) (map[string]struct{}, []byte, error) {
	set := make(map[string]struct{}, len(seeds))
	entries := len(seeds)
	if entries < 64 {
		entries = 64
	}
	bloom := z.NewBloomFilter(float64(entries), 0.01)
	for _, s := range seeds {
		raw, err := s.Vertex.Marshal()
		if err != nil {
			return nil, nil, err
		}
		set[string(raw)] = struct{}{}
		bloom.Add(farm.Fingerprint64(keys.Escape(raw)))
	}
	return set, bloom.JSONMarshal(), nil
}

func inSet(set map[string]struct{}, v interface{ Marshal() ([]byte, error) }) bool {
	raw, err := v.Marshal()
	if err != nil {
		return false
	}
	_, ok := set[string(raw)]
	return ok
}

// seedVerifier re-checks decoded elements against the seeds. Edge-seed
// point ranges can surface any group sharing the endpoints, so edges
// must either touch an entity seed or match an edge seed exactly.
func seedVerifier(seeds []element.Seed) func(element.Element) bool {
	vertices := make(map[string]struct{})
	type edgeID struct {
		src, dst string
		directed bool
	}
	edges := make(map[edgeID]struct{})
	for _, seed := range seeds {
		switch sd := seed.(type) {
		case element.EntitySeed:
			if raw, err := sd.Vertex.Marshal(); err == nil {
				vertices[string(raw)] = struct{}{}
			}
		case element.EdgeSeed:
			src, err1 := sd.Source.Marshal()
			dst, err2 := sd.Destination.Marshal()
			if err1 != nil || err2 != nil {
				continue
			}
			a, b := string(src), string(dst)
			if !sd.Directed && b < a {
				a, b = b, a
			}
			edges[edgeID{a, b, sd.Directed}] = struct{}{}
		}
	}
	if len(edges) == 0 {
		// Entity seeds alone are enforced by the ranges themselves.
		return nil
	}
	return func(el element.Element) bool {
		switch e := el.(type) {
		case *element.Entity:
			if raw, err := e.Vertex.Marshal(); err == nil {
				_, ok := vertices[string(raw)]
				return ok
			}
			return false
		case *element.Edge:
			if inSet(vertices, e.Source) || inSet(vertices, e.Destination) {
				return true
			}
			src, err1 := e.Source.Marshal()
			dst, err2 := e.Destination.Marshal()
			if err1 != nil || err2 != nil {
				return false
			}
			a, b := string(src), string(dst)
			if !e.Directed && b < a {
				a, b = b, a
			}
			_, ok := edges[edgeID{a, b, e.Directed}]
			return ok
		}
		return false
	}
}
