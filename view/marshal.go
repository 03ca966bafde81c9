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

package view

import (
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

// Marshal serialises the view for iterator configuration; same compact
// framing as the schema codec.
func (v *View) Marshal() ([]byte, error) {
	var e types.Encbuf
	if err := marshalGroupViews(&e, v.Entities); err != nil {
		return nil, err
	}
	if err := marshalGroupViews(&e, v.Edges); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

func marshalGroupViews(e *types.Encbuf, groups map[string]*GroupView) error {
	e.PutUvarint(uint64(len(groups)))
	for name, gv := range groups {
		e.PutString(name)
		if err := marshalFilters(e, gv.PreAggregationFilter); err != nil {
			return err
		}
		if err := marshalFilters(e, gv.PostAggregationFilter); err != nil {
			return err
		}
		if err := marshalFilters(e, gv.PostTransformationFilter); err != nil {
			return err
		}
		if t := gv.Transformer; t != nil {
			e.PutByte(1)
			marshalStrings(e, t.Selection)
			e.PutString(t.Function)
			e.PutUvarint(uint64(len(t.Args)))
			for _, a := range t.Args {
				if err := e.PutValue(a); err != nil {
					return x.IteratorConfigf("marshal transform arg: %v", err)
				}
			}
			marshalStrings(e, t.Projection)
		} else {
			e.PutByte(0)
		}
		if gv.HasGroupBy {
			e.PutByte(1)
			marshalStrings(e, gv.GroupBy)
		} else {
			e.PutByte(0)
		}
	}
	return nil
}

func marshalFilters(e *types.Encbuf, filters []Filter) error {
	e.PutUvarint(uint64(len(filters)))
	for _, f := range filters {
		marshalStrings(e, f.Selection)
		if err := f.Predicate.Marshal(e); err != nil {
			return x.IteratorConfigf("marshal filter: %v", err)
		}
	}
	return nil
}

func marshalStrings(e *types.Encbuf, ss []string) {
	e.PutUvarint(uint64(len(ss)))
	for _, s := range ss {
		e.PutString(s)
	}
}

// Unmarshal decodes a view serialised by Marshal.
func Unmarshal(data []byte) (*View, error) {
	d := types.NewDecbuf(data)
	v := New()
	if err := unmarshalGroupViews(d, v.Entities); err != nil {
		return nil, err
	}
	if err := unmarshalGroupViews(d, v.Edges); err != nil {
		return nil, err
	}
	if err := d.Err(); err != nil {
		return nil, x.IteratorConfigf("unmarshal view: %v", err)
	}
	return v, nil
}

func unmarshalGroupViews(d *types.Decbuf, groups map[string]*GroupView) error {
	n := d.Uvarint()
	for i := uint64(0); i < n; i++ {
		name := d.String()
		gv := &GroupView{}
		var err error
		if gv.PreAggregationFilter, err = unmarshalFilters(d); err != nil {
			return err
		}
		if gv.PostAggregationFilter, err = unmarshalFilters(d); err != nil {
			return err
		}
		if gv.PostTransformationFilter, err = unmarshalFilters(d); err != nil {
			return err
		}
		if d.Byte() == 1 {
			t := &Transformer{
				Selection: unmarshalStrings(d),
				Function:  d.String(),
			}
			nargs := d.Uvarint()
			for j := uint64(0); j < nargs; j++ {
				t.Args = append(t.Args, d.Value())
			}
			t.Projection = unmarshalStrings(d)
			gv.Transformer = t
		}
		if d.Byte() == 1 {
			gv.HasGroupBy = true
			gv.GroupBy = unmarshalStrings(d)
		}
		if err := d.Err(); err != nil {
			return x.IteratorConfigf("unmarshal view group %q: %v", name, err)
		}
		groups[name] = gv
	}
	return d.Err()
}

func unmarshalFilters(d *types.Decbuf) ([]Filter, error) {
	n := d.Uvarint()
	var out []Filter
	for i := uint64(0); i < n; i++ {
		f := Filter{Selection: unmarshalStrings(d)}
		pred, err := types.UnmarshalPredicate(d)
		if err != nil {
			return nil, x.IteratorConfigf("unmarshal filter: %v", err)
		}
		f.Predicate = pred
		out = append(out, f)
	}
	return out, d.Err()
}

func unmarshalStrings(d *types.Decbuf) []string {
	n := d.Uvarint()
	var out []string
	for i := uint64(0); i < n; i++ {
		out = append(out, d.String())
	}
	return out
}
