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
	"encoding/json"
	"math"

	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

type jsonView struct {
	Entities map[string]jsonGroupView `json:"entities"`
	Edges    map[string]jsonGroupView `json:"edges"`
}

type jsonGroupView struct {
	PreAggregationFilter     []jsonFilter     `json:"preAggregationFilter"`
	PostAggregationFilter    []jsonFilter     `json:"postAggregationFilter"`
	PostTransformationFilter []jsonFilter     `json:"postTransformationFilter"`
	Transformer              *jsonTransformer `json:"transformer"`
	GroupBy                  *[]string        `json:"groupBy"`
}

type jsonFilter struct {
	Selection []string      `json:"selection"`
	Predicate string        `json:"predicate"`
	Args      []interface{} `json:"args"`
}

type jsonTransformer struct {
	Selection  []string      `json:"selection"`
	Function   string        `json:"function"`
	Args       []interface{} `json:"args"`
	Projection []string      `json:"projection"`
}

// Parse reads the JSON view surface. The schema types the predicate
// arguments; the result is validated against it.
func Parse(s *schema.Schema, data []byte) (*View, error) {
	var jv jsonView
	if err := json.Unmarshal(data, &jv); err != nil {
		return nil, x.Operationf("bad view json: %v", err)
	}
	v := New()
	for name, jg := range jv.Entities {
		gv, err := parseGroupView(s, name, jg)
		if err != nil {
			return nil, err
		}
		v.Entities[name] = gv
	}
	for name, jg := range jv.Edges {
		gv, err := parseGroupView(s, name, jg)
		if err != nil {
			return nil, err
		}
		v.Edges[name] = gv
	}
	if err := v.Validate(s); err != nil {
		return nil, err
	}
	return v, nil
}

func parseGroupView(s *schema.Schema, name string, jg jsonGroupView) (*GroupView, error) {
	g, ok := s.Group(name)
	if !ok {
		return nil, x.Operationf("view names unknown group %q", name)
	}
	gv := &GroupView{}
	var err error
	if gv.PreAggregationFilter, err = parseFilters(g, jg.PreAggregationFilter); err != nil {
		return nil, err
	}
	if gv.PostAggregationFilter, err = parseFilters(g, jg.PostAggregationFilter); err != nil {
		return nil, err
	}
	if gv.PostTransformationFilter, err = parseFilters(g, jg.PostTransformationFilter); err != nil {
		return nil, err
	}
	if jg.Transformer != nil {
		t := &Transformer{
			Selection:  jg.Transformer.Selection,
			Function:   jg.Transformer.Function,
			Projection: jg.Transformer.Projection,
		}
		for _, raw := range jg.Transformer.Args {
			v, err := inferValue(raw)
			if err != nil {
				return nil, err
			}
			t.Args = append(t.Args, v)
		}
		gv.Transformer = t
	}
	if jg.GroupBy != nil {
		gv.HasGroupBy = true
		gv.GroupBy = *jg.GroupBy
	}
	return gv, nil
}

func parseFilters(g *schema.Group, jfs []jsonFilter) ([]Filter, error) {
	var out []Filter
	for _, jf := range jfs {
		kind, err := types.PredicateFromString(jf.Predicate)
		if err != nil {
			return nil, err
		}
		f := Filter{Selection: jf.Selection, Predicate: types.Predicate{Kind: kind}}
		for _, raw := range jf.Args {
			v, err := filterArg(g, jf.Selection, raw)
			if err != nil {
				return nil, err
			}
			f.Predicate.Args = append(f.Predicate.Args, v)
		}
		if err := f.Predicate.Validate(); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// filterArg types a predicate argument from the first selected
// property's declared type. A selection that names no declared
// property has no declared type, so the JSON shape decides.
func filterArg(g *schema.Group, selection []string, raw interface{}) (types.Value, error) {
	if len(selection) > 0 {
		if p, ok := g.Property(selection[0]); ok {
			return types.FromInterface(p.Type, raw)
		}
	}
	return inferValue(raw)
}

func inferValue(raw interface{}) (types.Value, error) {
	switch v := raw.(type) {
	case string:
		return types.String(v), nil
	case bool:
		return types.Bool(v), nil
	case float64:
		if v == math.Trunc(v) {
			return types.Int(int64(v)), nil
		}
		return types.Float(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return types.Int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return types.Value{}, x.Operationf("bad number %q", v.String())
		}
		return types.Float(f), nil
	}
	return types.Value{}, x.Operationf("cannot type argument %v", raw)
}
