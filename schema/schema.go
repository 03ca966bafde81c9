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

// Package schema models the graph schema: per-group property layouts,
// aggregation keys, and the visibility and timestamp property bindings.
// A Schema never mutates after Validate; it is shared freely across
// queries and serialised into server-side iterator configuration.
package schema

import (
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

// PropertyDef declares one property of a group. The serialiser is
// implied by the type; the aggregator merges values sharing an
// aggregation key; the optional validator rejects bad elements when the
// validation iterator is installed.
type PropertyDef struct {
	Name       string
	Type       types.TypeID
	Aggregator string
	Validator  *types.Predicate
}

// Group declares one family of elements sharing a property layout.
type Group struct {
	Name   string
	IsEdge bool

	// VertexType types entity vertices; SourceType/DestinationType type
	// edge endpoints. All three must be order-preserving serialisable,
	// which every TypeID is.
	VertexType      types.TypeID
	SourceType      types.TypeID
	DestinationType types.TypeID

	// Properties in declared order. The order fixes both the column
	// qualifier layout (group-by subset) and the value layout (the
	// rest).
	Properties []PropertyDef

	// GroupBy names the properties whose values form part of the
	// aggregation key, in qualifier order.
	GroupBy []string

	// VisibilityProperty, when set, names a string property whose value
	// becomes the column visibility instead of being stored in the
	// value bytes.
	VisibilityProperty string

	// TimestampProperty, when set, names an int property supplying the
	// key timestamp instead of the clock.
	TimestampProperty string
}

// Property returns the definition of the named property.
func (g *Group) Property(name string) (PropertyDef, bool) {
	for _, p := range g.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDef{}, false
}

// IsGroupBy reports whether the named property is part of the
// aggregation key.
func (g *Group) IsGroupBy(name string) bool {
	for _, n := range g.GroupBy {
		if n == name {
			return true
		}
	}
	return false
}

// GroupByProps returns the group-by property definitions in qualifier
// order.
func (g *Group) GroupByProps() []PropertyDef {
	out := make([]PropertyDef, 0, len(g.GroupBy))
	for _, name := range g.GroupBy {
		p, ok := g.Property(name)
		x.AssertTruef(ok, "group %q: group-by property %q undeclared", g.Name, name)
		out = append(out, p)
	}
	return out
}

// ValueProps returns, in declared order, the properties stored in the
// value bytes: everything that is not group-by, visibility or
// timestamp.
func (g *Group) ValueProps() []PropertyDef {
	var out []PropertyDef
	for _, p := range g.Properties {
		if g.IsGroupBy(p.Name) || p.Name == g.VisibilityProperty ||
			p.Name == g.TimestampProperty {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Schema is the full set of group definitions.
type Schema struct {
	Entities map[string]*Group
	Edges    map[string]*Group
}

// Group looks a group up by name across entities and edges.
func (s *Schema) Group(name string) (*Group, bool) {
	if g, ok := s.Entities[name]; ok {
		return g, true
	}
	g, ok := s.Edges[name]
	return g, ok
}

// Groups returns every group, entities first.
func (s *Schema) Groups() []*Group {
	out := make([]*Group, 0, len(s.Entities)+len(s.Edges))
	for _, g := range s.Entities {
		out = append(out, g)
	}
	for _, g := range s.Edges {
		out = append(out, g)
	}
	return out
}

// Validate checks internal consistency. It is fatal at store
// initialisation to proceed with an invalid schema.
func (s *Schema) Validate() error {
	if len(s.Entities) == 0 && len(s.Edges) == 0 {
		return x.Schemaf("schema declares no groups")
	}
	for name := range s.Entities {
		if _, ok := s.Edges[name]; ok {
			return x.Schemaf("group %q declared as both entity and edge", name)
		}
	}
	for _, g := range s.Groups() {
		if err := s.validateGroup(g); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) validateGroup(g *Group) error {
	seen := make(map[string]bool, len(g.Properties))
	for _, p := range g.Properties {
		if seen[p.Name] {
			return x.Schemaf("group %q: duplicate property %q", g.Name, p.Name)
		}
		seen[p.Name] = true
		if p.Type == 0 {
			return x.Schemaf("group %q: property %q has no type", g.Name, p.Name)
		}
		if p.Aggregator != "" {
			if _, err := types.GetAggregator(p.Aggregator); err != nil {
				return err
			}
		}
		if p.Validator != nil {
			if err := p.Validator.Validate(); err != nil {
				return x.Schemaf("group %q: property %q: bad validator: %v",
					g.Name, p.Name, err)
			}
		}
	}
	for _, name := range g.GroupBy {
		if !seen[name] {
			return x.Schemaf("group %q: group-by names unknown property %q", g.Name, name)
		}
	}
	if v := g.VisibilityProperty; v != "" {
		p, ok := g.Property(v)
		if !ok {
			return x.Schemaf("group %q: visibility property %q undeclared", g.Name, v)
		}
		if p.Type != types.StringID {
			return x.Schemaf("group %q: visibility property %q must be string", g.Name, v)
		}
		if g.IsGroupBy(v) {
			return x.Schemaf("group %q: visibility property %q cannot be group-by", g.Name, v)
		}
	}
	if t := g.TimestampProperty; t != "" {
		p, ok := g.Property(t)
		if !ok {
			return x.Schemaf("group %q: timestamp property %q undeclared", g.Name, t)
		}
		if p.Type != types.IntID {
			return x.Schemaf("group %q: timestamp property %q must be int", g.Name, t)
		}
		if g.IsGroupBy(t) {
			return x.Schemaf("group %q: timestamp property %q cannot be group-by", g.Name, t)
		}
	}
	return nil
}
