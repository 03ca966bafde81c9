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

// Package element holds the property-graph data model: entities, edges,
// their properties, and the seeds that queries start from.
package element

import (
	"fmt"

	"github.com/wiltonlazary/gaffer/types"
)

// Properties maps property names to typed values. The order in which
// properties serialise is fixed by the schema, not by this map.
type Properties map[string]types.Value

// Clone returns a shallow copy of the property map.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// MatchedVertex records which end of an edge matched the query seed.
type MatchedVertex byte

const (
	MatchedNone MatchedVertex = iota
	MatchedSource
	MatchedDestination
)

// Element is an entity or an edge.
type Element interface {
	ElementGroup() string
	Props() Properties
	fmt.Stringer
}

// Entity is a vertex with properties.
type Entity struct {
	Group      string
	Vertex     types.Value
	Properties Properties
}

func (e *Entity) ElementGroup() string { return e.Group }
func (e *Entity) Props() Properties    { return e.Properties }

func (e *Entity) String() string {
	return fmt.Sprintf("Entity[group=%s vertex=%v]", e.Group, e.Vertex)
}

// Edge connects a source vertex to a destination vertex. Undirected
// edges keep source and destination exactly as supplied; the store does
// not normalise endpoint order.
type Edge struct {
	Group       string
	Source      types.Value
	Destination types.Value
	Directed    bool
	Properties  Properties

	// Matched is a read-side hint: which endpoint the seed matched.
	// It is not part of the edge's identity and is never stored.
	Matched MatchedVertex
}

func (e *Edge) ElementGroup() string { return e.Group }
func (e *Edge) Props() Properties    { return e.Properties }

func (e *Edge) String() string {
	arrow := "--"
	if e.Directed {
		arrow = "->"
	}
	return fmt.Sprintf("Edge[group=%s %v%s%v]", e.Group, e.Source, arrow, e.Destination)
}

// FarEnd returns the endpoint opposite the matched vertex. With no
// matched hint it returns the destination.
func (e *Edge) FarEnd() types.Value {
	if e.Matched == MatchedDestination {
		return e.Source
	}
	return e.Destination
}
