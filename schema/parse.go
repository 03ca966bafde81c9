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
	"encoding/json"

	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

type jsonSchema struct {
	Entities map[string]jsonGroup `json:"entities"`
	Edges    map[string]jsonGroup `json:"edges"`
}

type jsonGroup struct {
	Vertex             string         `json:"vertex"`
	Source             string         `json:"source"`
	Destination        string         `json:"destination"`
	Properties         []jsonProperty `json:"properties"`
	GroupBy            []string       `json:"groupBy"`
	VisibilityProperty string         `json:"visibilityProperty"`
	TimestampProperty  string         `json:"timestampProperty"`
}

type jsonProperty struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Aggregator string         `json:"aggregator"`
	Validator  *jsonPredicate `json:"validator"`
}

type jsonPredicate struct {
	Predicate string        `json:"predicate"`
	Args      []interface{} `json:"args"`
}

// Parse reads the JSON schema surface and validates the result.
func Parse(data []byte) (*Schema, error) {
	var js jsonSchema
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, x.Schemaf("bad schema json: %v", err)
	}
	s := &Schema{
		Entities: make(map[string]*Group, len(js.Entities)),
		Edges:    make(map[string]*Group, len(js.Edges)),
	}
	for name, jg := range js.Entities {
		g, err := parseGroup(name, jg, false)
		if err != nil {
			return nil, err
		}
		s.Entities[name] = g
	}
	for name, jg := range js.Edges {
		g, err := parseGroup(name, jg, true)
		if err != nil {
			return nil, err
		}
		s.Edges[name] = g
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func parseGroup(name string, jg jsonGroup, isEdge bool) (*Group, error) {
	g := &Group{
		Name:               name,
		IsEdge:             isEdge,
		GroupBy:            jg.GroupBy,
		VisibilityProperty: jg.VisibilityProperty,
		TimestampProperty:  jg.TimestampProperty,
	}
	var err error
	if isEdge {
		if g.SourceType, err = types.FromString(jg.Source); err != nil {
			return nil, x.Schemaf("group %q: %v", name, err)
		}
		if g.DestinationType, err = types.FromString(jg.Destination); err != nil {
			return nil, x.Schemaf("group %q: %v", name, err)
		}
	} else {
		if g.VertexType, err = types.FromString(jg.Vertex); err != nil {
			return nil, x.Schemaf("group %q: %v", name, err)
		}
	}
	for _, jp := range jg.Properties {
		tid, err := types.FromString(jp.Type)
		if err != nil {
			return nil, x.Schemaf("group %q property %q: %v", name, jp.Name, err)
		}
		def := PropertyDef{Name: jp.Name, Type: tid, Aggregator: jp.Aggregator}
		if jp.Validator != nil {
			pred, err := parsePredicate(tid, *jp.Validator)
			if err != nil {
				return nil, x.Schemaf("group %q property %q: %v", name, jp.Name, err)
			}
			def.Validator = &pred
		}
		g.Properties = append(g.Properties, def)
	}
	return g, nil
}

func parsePredicate(tid types.TypeID, jp jsonPredicate) (types.Predicate, error) {
	kind, err := types.PredicateFromString(jp.Predicate)
	if err != nil {
		return types.Predicate{}, err
	}
	p := types.Predicate{Kind: kind}
	for _, raw := range jp.Args {
		v, err := types.FromInterface(tid, raw)
		if err != nil {
			return types.Predicate{}, err
		}
		p.Args = append(p.Args, v)
	}
	return p, p.Validate()
}
