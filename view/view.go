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

// Package view is the per-query overlay on the schema: which groups a
// query sees, the filters applied around aggregation, and any
// transformation. Groups absent from a view are excluded from results.
// A View never mutates after Validate.
package view

import (
	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

// Filter is one clause of a filter expression: select property values,
// apply a predicate.
type Filter struct {
	Selection []string
	Predicate types.Predicate
}

// Test evaluates the clause against an element's properties.
func (f Filter) Test(props element.Properties) (bool, error) {
	vals := make([]types.Value, len(f.Selection))
	for i, name := range f.Selection {
		vals[i] = props[name]
	}
	return f.Predicate.Eval(vals)
}

// TestAll evaluates a conjunction of clauses.
func TestAll(filters []Filter, props element.Properties) (bool, error) {
	for _, f := range filters {
		ok, err := f.Test(props)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Transformer rewrites selected property values into projected ones.
type Transformer struct {
	Selection  []string
	Function   string
	Args       []types.Value
	Projection []string
}

// Apply runs the transformer over an element's properties in place.
func (t *Transformer) Apply(props element.Properties) error {
	fn, err := types.GetFunction(t.Function)
	if err != nil {
		return err
	}
	in := make([]types.Value, len(t.Selection))
	for i, name := range t.Selection {
		in[i] = props[name]
	}
	out, err := fn(t.Args, in)
	if err != nil {
		return err
	}
	if len(out) != len(t.Projection) {
		return x.Operationf("transform %q produced %d values for %d projections",
			t.Function, len(out), len(t.Projection))
	}
	for i, name := range t.Projection {
		props[name] = out[i]
	}
	return nil
}

// GroupView is the overlay for a single group.
type GroupView struct {
	PreAggregationFilter     []Filter
	PostAggregationFilter    []Filter
	PostTransformationFilter []Filter
	Transformer              *Transformer

	// GroupBy, when HasGroupBy, narrows the schema group-by for
	// query-time aggregation.
	HasGroupBy bool
	GroupBy    []string
}

// View maps group names to their overlays.
type View struct {
	Entities map[string]*GroupView
	Edges    map[string]*GroupView
}

// New returns an empty view.
func New() *View {
	return &View{
		Entities: make(map[string]*GroupView),
		Edges:    make(map[string]*GroupView),
	}
}

// All returns a view admitting every schema group with no overlays.
func All(s *schema.Schema) *View {
	v := New()
	for name := range s.Entities {
		v.Entities[name] = &GroupView{}
	}
	for name := range s.Edges {
		v.Edges[name] = &GroupView{}
	}
	return v
}

// Group returns the overlay for a group, nil if the view excludes it.
func (v *View) Group(name string) *GroupView {
	if gv, ok := v.Entities[name]; ok {
		return gv
	}
	return v.Edges[name]
}

// IsEmpty reports whether the view admits no groups at all.
func (v *View) IsEmpty() bool {
	return len(v.Entities) == 0 && len(v.Edges) == 0
}

// HasFilters reports whether any group declares the given filter stage.
func (v *View) HasFilters(stage func(*GroupView) []Filter) bool {
	for _, gv := range v.Entities {
		if len(stage(gv)) > 0 {
			return true
		}
	}
	for _, gv := range v.Edges {
		if len(stage(gv)) > 0 {
			return true
		}
	}
	return false
}

// HasTransforms reports whether any group declares a transformer or a
// post-transformation filter.
func (v *View) HasTransforms() bool {
	for _, gv := range v.Entities {
		if gv.Transformer != nil || len(gv.PostTransformationFilter) > 0 {
			return true
		}
	}
	for _, gv := range v.Edges {
		if gv.Transformer != nil || len(gv.PostTransformationFilter) > 0 {
			return true
		}
	}
	return false
}

// Validate checks the view against the schema: every named group and
// property must exist, pre-aggregation filters may only touch group-by
// properties (anything else must run after aggregation), and a group-by
// override must narrow the schema's group-by.
func (v *View) Validate(s *schema.Schema) error {
	check := func(groups map[string]*GroupView, isEdge bool) error {
		for name, gv := range groups {
			g, ok := s.Group(name)
			if !ok {
				return x.Operationf("view names unknown group %q", name)
			}
			if g.IsEdge != isEdge {
				return x.Operationf("view lists group %q on the wrong side", name)
			}
			if err := validateGroupView(g, gv); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(v.Entities, false); err != nil {
		return err
	}
	return check(v.Edges, true)
}

func validateGroupView(g *schema.Group, gv *GroupView) error {
	checkSelection := func(sel []string) error {
		for _, name := range sel {
			if _, ok := g.Property(name); !ok {
				return x.Operationf("group %q: filter selects unknown property %q",
					g.Name, name)
			}
		}
		return nil
	}
	for _, f := range gv.PreAggregationFilter {
		if err := checkSelection(f.Selection); err != nil {
			return err
		}
		for _, name := range f.Selection {
			if !g.IsGroupBy(name) {
				return x.Operationf(
					"group %q: pre-aggregation filter selects non-group-by property %q; "+
						"filter it after aggregation", g.Name, name)
			}
		}
		if err := f.Predicate.Validate(); err != nil {
			return err
		}
	}
	for _, f := range gv.PostAggregationFilter {
		if err := checkSelection(f.Selection); err != nil {
			return err
		}
		if err := f.Predicate.Validate(); err != nil {
			return err
		}
	}
	for _, f := range gv.PostTransformationFilter {
		if err := f.Predicate.Validate(); err != nil {
			return err
		}
	}
	if t := gv.Transformer; t != nil {
		if err := checkSelection(t.Selection); err != nil {
			return err
		}
		if _, err := types.GetFunction(t.Function); err != nil {
			return err
		}
		// Projections land in the value bytes, so they must target
		// declared properties outside the aggregation key.
		for _, name := range t.Projection {
			if _, ok := g.Property(name); !ok {
				return x.Operationf("group %q: transformer projects onto unknown property %q",
					g.Name, name)
			}
			if g.IsGroupBy(name) || name == g.VisibilityProperty || name == g.TimestampProperty {
				return x.Operationf("group %q: transformer cannot project onto key property %q",
					g.Name, name)
			}
		}
	}
	if gv.HasGroupBy {
		for _, name := range gv.GroupBy {
			if !g.IsGroupBy(name) {
				return x.Operationf(
					"group %q: view group-by %q is not part of the schema group-by",
					g.Name, name)
			}
		}
	}
	return nil
}
