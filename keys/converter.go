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

package keys

import (
	"time"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

// CoreConverter carries the layout-independent half of the codec: the
// column qualifier, value, visibility and timestamp encodings. Layouts
// embed it and add their row format.
type CoreConverter struct {
	Schema *schema.Schema
}

// SerialiseVertex marshals and escapes a vertex for row embedding.
func (c *CoreConverter) SerialiseVertex(tid types.TypeID, v types.Value) ([]byte, error) {
	if v.Tid != tid {
		return nil, x.Codecf("vertex has type %s, schema declares %s", v.Tid, tid)
	}
	raw, err := v.Marshal()
	if err != nil {
		return nil, err
	}
	return Escape(raw), nil
}

// DeserialiseVertex reverses SerialiseVertex.
func (c *CoreConverter) DeserialiseVertex(tid types.TypeID, seg []byte) (types.Value, error) {
	raw, err := Unescape(seg)
	if err != nil {
		return types.Value{}, err
	}
	return types.Unmarshal(tid, raw)
}

// QualifierFromProps encodes the group-by property values, length
// prefixed, in the given order. A missing group-by property is a codec
// error: it would leave a hole in the aggregation key.
func (c *CoreConverter) QualifierFromProps(g *schema.Group, props element.Properties,
	groupBy []string) ([]byte, error) {
	var e types.Encbuf
	for _, name := range groupBy {
		p, ok := g.Property(name)
		if !ok {
			return nil, x.Codecf("group %q has no property %q", g.Name, name)
		}
		v, ok := props[name]
		if !ok {
			return nil, x.Codecf("group %q: missing group-by property %q", g.Name, name)
		}
		if v.Tid != p.Type {
			return nil, x.Codecf("group %q: property %q has type %s, schema declares %s",
				g.Name, name, v.Tid, p.Type)
		}
		data, err := v.Marshal()
		if err != nil {
			return nil, err
		}
		e.PutBytes(data)
	}
	return e.Bytes(), nil
}

// PropsFromQualifier decodes a column qualifier written with the given
// group-by order.
func (c *CoreConverter) PropsFromQualifier(g *schema.Group, cq []byte,
	groupBy []string) (element.Properties, error) {
	props := make(element.Properties, len(groupBy))
	d := types.NewDecbuf(cq)
	for _, name := range groupBy {
		p, ok := g.Property(name)
		if !ok {
			return nil, x.Codecf("group %q has no property %q", g.Name, name)
		}
		v, err := types.Unmarshal(p.Type, d.Bytes())
		if err != nil {
			return nil, err
		}
		if err := d.Err(); err != nil {
			return nil, err
		}
		props[name] = v
	}
	return props, nil
}

// ValueFromProps encodes the non-group-by properties in schema order,
// each with a presence byte. Absent properties stay absent through the
// round trip.
func (c *CoreConverter) ValueFromProps(g *schema.Group, props element.Properties) ([]byte, error) {
	var e types.Encbuf
	for _, p := range g.ValueProps() {
		v, ok := props[p.Name]
		if !ok {
			e.PutByte(0)
			continue
		}
		if v.Tid != p.Type {
			return nil, x.Codecf("group %q: property %q has type %s, schema declares %s",
				g.Name, p.Name, v.Tid, p.Type)
		}
		data, err := v.Marshal()
		if err != nil {
			return nil, err
		}
		e.PutByte(1)
		e.PutBytes(data)
	}
	return e.Bytes(), nil
}

// PropsFromValue decodes value bytes written by ValueFromProps. The
// schema is required; value bytes alone are meaningless.
func (c *CoreConverter) PropsFromValue(g *schema.Group, value []byte) (element.Properties, error) {
	props := make(element.Properties)
	d := types.NewDecbuf(value)
	for _, p := range g.ValueProps() {
		if d.Byte() == 0 {
			continue
		}
		v, err := types.Unmarshal(p.Type, d.Bytes())
		if err != nil {
			return nil, err
		}
		if err := d.Err(); err != nil {
			return nil, err
		}
		props[p.Name] = v
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return props, nil
}

// VisibilityFromProps produces the column visibility from the group's
// declared visibility property, empty when the group declares none.
func (c *CoreConverter) VisibilityFromProps(g *schema.Group, props element.Properties) []byte {
	if g.VisibilityProperty == "" {
		return nil
	}
	v, ok := props[g.VisibilityProperty]
	if !ok || v.Tid != types.StringID {
		return nil
	}
	return []byte(v.Str)
}

// TimestampFromProps takes the declared timestamp property when
// present, otherwise a clock value coarsened to one second so that
// re-writes of the same element tend to collide.
func (c *CoreConverter) TimestampFromProps(g *schema.Group, props element.Properties) uint64 {
	if g.TimestampProperty != "" {
		if v, ok := props[g.TimestampProperty]; ok && v.Tid == types.IntID {
			return uint64(v.Int)
		}
	}
	return uint64(time.Now().Unix()) * 1000
}

// RestoreKeyProps merges the qualifier, visibility and timestamp
// properties back into a decoded property map.
func (c *CoreConverter) RestoreKeyProps(g *schema.Group, props element.Properties,
	cq []byte, cv []byte, ts uint64) error {
	qprops, err := c.PropsFromQualifier(g, cq, g.GroupBy)
	if err != nil {
		return err
	}
	for name, v := range qprops {
		props[name] = v
	}
	if g.VisibilityProperty != "" && len(cv) > 0 {
		props[g.VisibilityProperty] = types.String(string(cv))
	}
	if g.TimestampProperty != "" {
		props[g.TimestampProperty] = types.Int(int64(ts))
	}
	return nil
}
