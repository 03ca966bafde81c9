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

package schema

import (
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

// The binary form travels inside iterator-setting options, which sit on
// the hot path of scan setup. It is a compact uvarint framing, not a
// general-purpose text format.

// Marshal serialises the schema for iterator configuration.
func (s *Schema) Marshal() ([]byte, error) {
	var e types.Encbuf
	if err := marshalGroups(&e, s.Entities); err != nil {
		return nil, err
	}
	if err := marshalGroups(&e, s.Edges); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

func marshalGroups(e *types.Encbuf, groups map[string]*Group) error {
	e.PutUvarint(uint64(len(groups)))
	for _, g := range groups {
		if err := marshalGroup(e, g); err != nil {
			return err
		}
	}
	return nil
}

func marshalGroup(e *types.Encbuf, g *Group) error {
	e.PutString(g.Name)
	if g.IsEdge {
		e.PutByte(1)
		e.PutByte(byte(g.SourceType))
		e.PutByte(byte(g.DestinationType))
	} else {
		e.PutByte(0)
		e.PutByte(byte(g.VertexType))
	}
	e.PutUvarint(uint64(len(g.Properties)))
	for _, p := range g.Properties {
		e.PutString(p.Name)
		e.PutByte(byte(p.Type))
		e.PutString(p.Aggregator)
		if p.Validator != nil {
			e.PutByte(1)
			if err := p.Validator.Marshal(e); err != nil {
				return x.IteratorConfigf("marshal validator for %q: %v", p.Name, err)
			}
		} else {
			e.PutByte(0)
		}
	}
	e.PutUvarint(uint64(len(g.GroupBy)))
	for _, name := range g.GroupBy {
		e.PutString(name)
	}
	e.PutString(g.VisibilityProperty)
	e.PutString(g.TimestampProperty)
	return nil
}

// Unmarshal decodes a schema serialised by Marshal.
func Unmarshal(data []byte) (*Schema, error) {
	d := types.NewDecbuf(data)
	s := &Schema{
		Entities: make(map[string]*Group),
		Edges:    make(map[string]*Group),
	}
	if err := unmarshalGroups(d, s.Entities); err != nil {
		return nil, err
	}
	if err := unmarshalGroups(d, s.Edges); err != nil {
		return nil, err
	}
	if err := d.Err(); err != nil {
		return nil, x.IteratorConfigf("unmarshal schema: %v", err)
	}
	return s, nil
}

func unmarshalGroups(d *types.Decbuf, groups map[string]*Group) error {
	n := d.Uvarint()
	for i := uint64(0); i < n; i++ {
		g, err := unmarshalGroup(d)
		if err != nil {
			return err
		}
		groups[g.Name] = g
	}
	return d.Err()
}

func unmarshalGroup(d *types.Decbuf) (*Group, error) {
	g := &Group{Name: d.String()}
	if d.Byte() == 1 {
		g.IsEdge = true
		g.SourceType = types.TypeID(d.Byte())
		g.DestinationType = types.TypeID(d.Byte())
	} else {
		g.VertexType = types.TypeID(d.Byte())
	}
	nprops := d.Uvarint()
	for i := uint64(0); i < nprops; i++ {
		p := PropertyDef{
			Name:       d.String(),
			Type:       types.TypeID(d.Byte()),
			Aggregator: d.String(),
		}
		if d.Byte() == 1 {
			pred, err := types.UnmarshalPredicate(d)
			if err != nil {
				return nil, x.IteratorConfigf("unmarshal validator: %v", err)
			}
			p.Validator = &pred
		}
		g.Properties = append(g.Properties, p)
	}
	ngb := d.Uvarint()
	for i := uint64(0); i < ngb; i++ {
		g.GroupBy = append(g.GroupBy, d.String())
	}
	g.VisibilityProperty = d.String()
	g.TimestampProperty = d.String()
	return g, d.Err()
}
