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

package operation

import (
	"encoding/json"
	"math"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/view"
	"github.com/wiltonlazary/gaffer/x"
)

type jsonOperation struct {
	Class                       string          `json:"class"`
	View                        json.RawMessage `json:"view"`
	Seeds                       []jsonSeed      `json:"seeds"`
	SeedsB                      []jsonSeed      `json:"seedsB"`
	IncludeIncomingOutgoingType string          `json:"includeIncomingOutgoingType"`
	IncludeEdges                string          `json:"includeEdges"`
	IncludeEntities             *bool           `json:"includeEntities"`
}

type jsonSeed struct {
	Entity interface{}   `json:"entity"`
	Edge   []interface{} `json:"edge"`
	Range  []interface{} `json:"range"`
}

// Parse reads the JSON operation surface into a concrete operation.
// The schema types the view; seed vertices are typed by their JSON
// shape.
func Parse(s *schema.Schema, data []byte) (interface{}, error) {
	var jo jsonOperation
	if err := json.Unmarshal(data, &jo); err != nil {
		return nil, x.Operationf("bad operation json: %v", err)
	}

	v := view.All(s)
	if len(jo.View) > 0 {
		var err error
		if v, err = view.Parse(s, jo.View); err != nil {
			return nil, err
		}
	}
	includeEntities := true
	if jo.IncludeEntities != nil {
		includeEntities = *jo.IncludeEntities
	}
	includeEdges := EdgesAll
	if jo.IncludeEdges != "" {
		includeEdges = IncludeEdgeType(jo.IncludeEdges)
	}
	inOut := InOutEither
	if jo.IncludeIncomingOutgoingType != "" {
		inOut = InOutType(jo.IncludeIncomingOutgoingType)
	}

	seeds, entitySeeds, rangeSeeds, err := parseSeeds(jo.Seeds)
	if err != nil {
		return nil, err
	}

	switch jo.Class {
	case "GetElements":
		return GetElements{Seeds: seeds, View: v, IncludeEntities: includeEntities,
			IncludeEdges: includeEdges, InOut: inOut}, nil
	case "GetAllElements":
		return GetAllElements{View: v, IncludeEntities: includeEntities,
			IncludeEdges: includeEdges}, nil
	case "GetAdjacentEntitySeeds":
		return GetAdjacentEntitySeeds{Seeds: seeds, View: v, InOut: inOut}, nil
	case "GetElementsWithinSet":
		return GetElementsWithinSet{Seeds: entitySeeds, View: v,
			IncludeEntities: includeEntities, IncludeEdges: includeEdges}, nil
	case "GetElementsBetweenSets":
		_, entityB, _, err := parseSeeds(jo.SeedsB)
		if err != nil {
			return nil, err
		}
		return GetElementsBetweenSets{SeedsA: entitySeeds, SeedsB: entityB, View: v,
			IncludeEntities: includeEntities, IncludeEdges: includeEdges, InOut: inOut}, nil
	case "GetElementsInRanges":
		return GetElementsInRanges{Ranges: rangeSeeds, View: v,
			IncludeEntities: includeEntities, IncludeEdges: includeEdges}, nil
	case "SummariseGroupOverRanges":
		return SummariseGroupOverRanges{Ranges: rangeSeeds, View: v,
			IncludeEntities: includeEntities, IncludeEdges: includeEdges}, nil
	}
	return nil, x.Operationf("unknown operation class %q", jo.Class)
}

func parseSeeds(jss []jsonSeed) ([]element.Seed, []element.EntitySeed,
	[]element.RangeSeed, error) {
	var seeds []element.Seed
	var entities []element.EntitySeed
	var ranges []element.RangeSeed
	for _, js := range jss {
		switch {
		case js.Entity != nil:
			v, err := seedValue(js.Entity)
			if err != nil {
				return nil, nil, nil, err
			}
			seeds = append(seeds, element.EntitySeed{Vertex: v})
			entities = append(entities, element.EntitySeed{Vertex: v})
		case len(js.Edge) == 3:
			src, err := seedValue(js.Edge[0])
			if err != nil {
				return nil, nil, nil, err
			}
			dst, err := seedValue(js.Edge[1])
			if err != nil {
				return nil, nil, nil, err
			}
			directed, ok := js.Edge[2].(bool)
			if !ok {
				return nil, nil, nil, x.Operationf("edge seed directed flag must be bool")
			}
			seeds = append(seeds, element.EdgeSeed{Source: src, Destination: dst,
				Directed: directed})
		case len(js.Range) == 2:
			lo, err := seedValue(js.Range[0])
			if err != nil {
				return nil, nil, nil, err
			}
			hi, err := seedValue(js.Range[1])
			if err != nil {
				return nil, nil, nil, err
			}
			ranges = append(ranges, element.RangeSeed{Lo: lo, Hi: hi})
		default:
			return nil, nil, nil, x.Operationf("seed must be an entity, an edge triple or a range pair")
		}
	}
	return seeds, entities, ranges, nil
}

func seedValue(raw interface{}) (types.Value, error) {
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
	}
	return types.Value{}, x.Operationf("cannot type seed %v", raw)
}
