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
	"encoding/base64"

	"github.com/wiltonlazary/gaffer/operation"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/view"
)

// Iterator priorities fix the stack order: validation below
// aggregation, the filter stages above it, transformation above those,
// the direction filter on top. Filter semantics depend on this order.
const (
	PriorityBloomFilter         = 15
	PriorityValidation          = 20
	PriorityAggregation         = 30
	PriorityPreAggFilter        = 40
	PriorityPostAggFilter       = 50
	PriorityTransform           = 60
	PriorityPostTransformFilter = 70
	PriorityDirectionFilter     = 80
)

// CoreIteratorFactory builds the iterator settings shared by the
// layouts; only the key-package identifier differs.
type CoreIteratorFactory struct {
	PackageID string
}

func (f CoreIteratorFactory) baseOptions(s *schema.Schema) (map[string]string, error) {
	payload, err := s.Marshal()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		OptKeyPackage: f.PackageID,
		OptSchema:     tablet.EncodeConfig(payload),
	}, nil
}

func (f CoreIteratorFactory) viewOptions(s *schema.Schema, v *view.View) (map[string]string, error) {
	opts, err := f.baseOptions(s)
	if err != nil {
		return nil, err
	}
	payload, err := v.Marshal()
	if err != nil {
		return nil, err
	}
	opts[OptView] = tablet.EncodeConfig(payload)
	return opts, nil
}

func (f CoreIteratorFactory) ValidationSetting(s *schema.Schema) (*tablet.IteratorSetting, error) {
	opts, err := f.baseOptions(s)
	if err != nil {
		return nil, err
	}
	return &tablet.IteratorSetting{
		Priority: PriorityValidation,
		Name:     "validation",
		Class:    ClassValidation,
		Options:  opts,
	}, nil
}

func (f CoreIteratorFactory) AggregationSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error) {
	opts, err := f.viewOptions(s, v)
	if err != nil {
		return nil, err
	}
	return &tablet.IteratorSetting{
		Priority: PriorityAggregation,
		Name:     "aggregation",
		Class:    ClassAggregation,
		Options:  opts,
	}, nil
}

func (f CoreIteratorFactory) PreAggregationFilterSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error) {
	if !v.HasFilters(func(gv *view.GroupView) []view.Filter { return gv.PreAggregationFilter }) {
		return nil, nil
	}
	opts, err := f.viewOptions(s, v)
	if err != nil {
		return nil, err
	}
	return &tablet.IteratorSetting{
		Priority: PriorityPreAggFilter,
		Name:     "preAggregationFilter",
		Class:    ClassPreAggFilter,
		Options:  opts,
	}, nil
}

func (f CoreIteratorFactory) PostAggregationFilterSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error) {
	if !v.HasFilters(func(gv *view.GroupView) []view.Filter { return gv.PostAggregationFilter }) {
		return nil, nil
	}
	opts, err := f.viewOptions(s, v)
	if err != nil {
		return nil, err
	}
	return &tablet.IteratorSetting{
		Priority: PriorityPostAggFilter,
		Name:     "postAggregationFilter",
		Class:    ClassPostAggFilter,
		Options:  opts,
	}, nil
}

func (f CoreIteratorFactory) TransformSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error) {
	hasTransformer := false
	for _, gv := range v.Entities {
		if gv.Transformer != nil {
			hasTransformer = true
		}
	}
	for _, gv := range v.Edges {
		if gv.Transformer != nil {
			hasTransformer = true
		}
	}
	if !hasTransformer {
		return nil, nil
	}
	opts, err := f.viewOptions(s, v)
	if err != nil {
		return nil, err
	}
	return &tablet.IteratorSetting{
		Priority: PriorityTransform,
		Name:     "transformation",
		Class:    ClassTransform,
		Options:  opts,
	}, nil
}

func (f CoreIteratorFactory) PostTransformFilterSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error) {
	if !v.HasFilters(func(gv *view.GroupView) []view.Filter { return gv.PostTransformationFilter }) {
		return nil, nil
	}
	opts, err := f.viewOptions(s, v)
	if err != nil {
		return nil, err
	}
	return &tablet.IteratorSetting{
		Priority: PriorityPostTransformFilter,
		Name:     "postTransformationFilter",
		Class:    ClassPostTransformFilter,
		Options:  opts,
	}, nil
}

func (f CoreIteratorFactory) DirectionFilterSetting(includeEntities bool,
	edges operation.IncludeEdgeType, inOut operation.InOutType) (*tablet.IteratorSetting, error) {
	entities := "false"
	if includeEntities {
		entities = "true"
	}
	return &tablet.IteratorSetting{
		Priority: PriorityDirectionFilter,
		Name:     "edgeEntityDirectionFilter",
		Class:    ClassDirectionFilter,
		Options: map[string]string{
			OptKeyPackage:      f.PackageID,
			OptIncludeEntities: entities,
			OptIncludeEdges:    string(edges),
			OptInOut:           string(inOut),
		},
	}, nil
}

func (f CoreIteratorFactory) BloomFilterSetting(s *schema.Schema, bloom []byte,
	checkBoth bool) (*tablet.IteratorSetting, error) {
	opts, err := f.baseOptions(s)
	if err != nil {
		return nil, err
	}
	opts[OptBloom] = base64.StdEncoding.EncodeToString(bloom)
	opts[OptBloomBoth] = "false"
	if checkBoth {
		opts[OptBloomBoth] = "true"
	}
	return &tablet.IteratorSetting{
		Priority: PriorityBloomFilter,
		Name:     "bloomFilter",
		Class:    ClassBloomFilter,
		Options:  opts,
	}, nil
}
