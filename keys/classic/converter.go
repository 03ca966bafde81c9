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

package classic

import (
	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/x"
)

type converter struct {
	keys.CoreConverter
}

func edgeMarkers(directed bool) (first, second byte) {
	if directed {
		return keys.DirectedSourceFirst, keys.DirectedDestFirst
	}
	return keys.Undirected, keys.Undirected
}

// entityRow is the bare escaped vertex.
func entityRow(vseg []byte) []byte {
	return append([]byte{}, vseg...)
}

// edgeRow is first ‖ delim ‖ marker ‖ delim ‖ second.
func edgeRow(first, second []byte, marker byte) []byte {
	row := make([]byte, 0, len(first)+len(second)+3)
	row = append(row, first...)
	row = append(row, keys.Delimiter, marker, keys.Delimiter)
	return append(row, second...)
}

func (c *converter) KeysFromElement(el element.Element) (tablet.Key, *tablet.Key, error) {
	switch e := el.(type) {
	case *element.Entity:
		g, ok := c.Schema.Entities[e.Group]
		if !ok {
			return tablet.Key{}, nil, x.Codecf("unknown entity group %q", e.Group)
		}
		vseg, err := c.SerialiseVertex(g.VertexType, e.Vertex)
		if err != nil {
			return tablet.Key{}, nil, err
		}
		cq, err := c.QualifierFromProps(g, e.Properties, g.GroupBy)
		if err != nil {
			return tablet.Key{}, nil, err
		}
		return tablet.Key{
			Row:           entityRow(vseg),
			ColFamily:     []byte(g.Name),
			ColQualifier:  cq,
			ColVisibility: c.VisibilityFromProps(g, e.Properties),
			Timestamp:     c.TimestampFromProps(g, e.Properties),
		}, nil, nil

	case *element.Edge:
		g, ok := c.Schema.Edges[e.Group]
		if !ok {
			return tablet.Key{}, nil, x.Codecf("unknown edge group %q", e.Group)
		}
		srcSeg, err := c.SerialiseVertex(g.SourceType, e.Source)
		if err != nil {
			return tablet.Key{}, nil, err
		}
		dstSeg, err := c.SerialiseVertex(g.DestinationType, e.Destination)
		if err != nil {
			return tablet.Key{}, nil, err
		}
		cq, err := c.QualifierFromProps(g, e.Properties, g.GroupBy)
		if err != nil {
			return tablet.Key{}, nil, err
		}
		cv := c.VisibilityFromProps(g, e.Properties)
		ts := c.TimestampFromProps(g, e.Properties)
		m1, m2 := edgeMarkers(e.Directed)
		first := tablet.Key{
			Row:           edgeRow(srcSeg, dstSeg, m1),
			ColFamily:     []byte(g.Name),
			ColQualifier:  cq,
			ColVisibility: cv,
			Timestamp:     ts,
		}
		second := tablet.Key{
			Row:           edgeRow(dstSeg, srcSeg, m2),
			ColFamily:     []byte(g.Name),
			ColQualifier:  cq,
			ColVisibility: cv,
			Timestamp:     ts,
		}
		return first, &second, nil
	}
	return tablet.Key{}, nil, x.Codecf("unknown element kind %T", el)
}

func (c *converter) ValueFromElement(el element.Element) ([]byte, error) {
	g, ok := c.Schema.Group(el.ElementGroup())
	if !ok {
		return nil, x.Codecf("unknown group %q", el.ElementGroup())
	}
	return c.ValueFromProps(g, el.Props())
}

func (c *converter) ElementFromKeyValue(k tablet.Key, value []byte,
	matchedHint bool) (element.Element, error) {
	group := string(k.ColFamily)
	g, ok := c.Schema.Group(group)
	if !ok {
		return nil, x.Codecf("unknown group %q", group)
	}
	props, err := c.PropsFromValue(g, value)
	if err != nil {
		return nil, err
	}
	if err := c.RestoreKeyProps(g, props, k.ColQualifier, k.ColVisibility, k.Timestamp); err != nil {
		return nil, err
	}

	parts := keys.SplitRow(k.Row)
	if !g.IsEdge {
		if len(parts) != 1 {
			return nil, x.Codecf("malformed entity row for group %q", group)
		}
		vertex, err := c.DeserialiseVertex(g.VertexType, parts[0])
		if err != nil {
			return nil, err
		}
		return &element.Entity{Group: group, Vertex: vertex, Properties: props}, nil
	}

	if len(parts) != 3 || len(parts[1]) != 1 {
		return nil, x.Codecf("malformed edge row for group %q", group)
	}
	first, marker, second := parts[0], parts[1][0], parts[2]

	e := &element.Edge{Group: group, Properties: props}
	switch marker {
	case keys.DirectedSourceFirst, keys.Undirected:
		src, err := c.DeserialiseVertex(g.SourceType, first)
		if err != nil {
			return nil, err
		}
		dst, err := c.DeserialiseVertex(g.DestinationType, second)
		if err != nil {
			return nil, err
		}
		e.Source, e.Destination = src, dst
		e.Directed = marker == keys.DirectedSourceFirst
		if matchedHint {
			e.Matched = element.MatchedSource
		}
	case keys.DirectedDestFirst:
		dst, err := c.DeserialiseVertex(g.DestinationType, first)
		if err != nil {
			return nil, err
		}
		src, err := c.DeserialiseVertex(g.SourceType, second)
		if err != nil {
			return nil, err
		}
		e.Source, e.Destination = src, dst
		e.Directed = true
		if matchedHint {
			e.Matched = element.MatchedDestination
		}
	default:
		return nil, x.Codecf("bad edge marker byte 0x%02x", marker)
	}
	return e, nil
}
