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

// Package keys defines the key-package contract: the bundle of codec,
// range factory, iterator-settings factory and bloom-key functor that
// fixes one on-disk layout. Layout variants register here by
// identifier; there is no reflective loading.
package keys

import (
	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/operation"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/view"
	"github.com/wiltonlazary/gaffer/x"
)

// Row byte constants shared by the layouts. The delimiter is reserved:
// serialised vertices are escaped so they never produce it. The marker
// byte trailing an edge row encodes directedness and which endpoint
// came first.
const (
	Delimiter           = byte(0x00)
	EntityFlag          = byte(0x01)
	DirectedSourceFirst = byte(0x02)
	DirectedDestFirst   = byte(0x03)
	Undirected          = byte(0x04)
)

// Converter is the element⇄key codec (the bijection of one layout).
type Converter interface {
	// KeysFromElement returns one key for an entity, two for an edge
	// (source-first and destination-first).
	KeysFromElement(el element.Element) (tablet.Key, *tablet.Key, error)

	// ValueFromElement serialises the non-group-by properties.
	ValueFromElement(el element.Element) ([]byte, error)

	// ElementFromKeyValue decodes a stored cell. When matchedHint is
	// set, decoded edges carry which end the seed matched; source and
	// destination always come back in logical order.
	ElementFromKeyValue(k tablet.Key, value []byte, matchedHint bool) (element.Element, error)

	// SerialiseVertex produces the escaped row segment for a vertex,
	// as used in rows and ranges.
	SerialiseVertex(tid types.TypeID, v types.Value) ([]byte, error)

	// Property codecs used by the aggregation and transform iterators.
	PropsFromValue(g *schema.Group, value []byte) (element.Properties, error)
	ValueFromProps(g *schema.Group, props element.Properties) ([]byte, error)
	PropsFromQualifier(g *schema.Group, cq []byte, groupBy []string) (element.Properties, error)
	QualifierFromProps(g *schema.Group, props element.Properties, groupBy []string) ([]byte, error)
}

// RangeOptions narrows what element kinds a seed range must cover.
type RangeOptions struct {
	IncludeEntities bool
	IncludeEdges    bool
}

// RangeFactory produces the ordered row ranges covering a seed.
type RangeFactory interface {
	// RangesForSeed returns ranges sorted by start key whose union
	// covers exactly the keys touching the seed.
	RangesForSeed(seed element.Seed, opts RangeOptions) ([]tablet.Range, error)
}

// IteratorFactory produces the server-side iterator settings for one
// layout. A nil setting with nil error means the stage is not needed.
type IteratorFactory interface {
	ValidationSetting(s *schema.Schema) (*tablet.IteratorSetting, error)
	AggregationSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error)
	PreAggregationFilterSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error)
	PostAggregationFilterSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error)
	TransformSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error)
	PostTransformFilterSetting(s *schema.Schema, v *view.View) (*tablet.IteratorSetting, error)
	DirectionFilterSetting(includeEntities bool, edges operation.IncludeEdgeType,
		inOut operation.InOutType) (*tablet.IteratorSetting, error)
	BloomFilterSetting(s *schema.Schema, bloom []byte, checkBoth bool) (*tablet.IteratorSetting, error)
}

// Functor extracts endpoint segments from stored rows; the engine uses
// the first segment as the bloom-filter key prefix.
type Functor interface {
	Name() string
	// RowParts splits a row into its escaped endpoint segments and the
	// marker byte (EntityFlag for entity rows, where second is nil).
	RowParts(row []byte) (first, second []byte, marker byte, err error)
}

// Package bundles one on-disk layout. SetSchema must be called once
// before use; after that the package is read-only.
type Package interface {
	ID() string
	SetSchema(s *schema.Schema) error
	Converter() Converter
	Ranges() RangeFactory
	Iterators() IteratorFactory
	Functor() Functor
}

var packages = make(map[string]func() Package)

// Register installs a key-package constructor under its identifier.
func Register(id string, factory func() Package) {
	if _, ok := packages[id]; ok {
		x.AssertTruef(false, "duplicate key package %q", id)
	}
	packages[id] = factory
}

// Get constructs a fresh instance of the named key package.
func Get(id string) (Package, error) {
	factory, ok := packages[id]
	if !ok {
		return nil, x.Configf("unknown key package %q", id)
	}
	return factory(), nil
}

// Iterator option keys and class names shared by the layouts and the
// server-side iterator implementations.
const (
	OptKeyPackage      = "keyPackage"
	OptSchema          = "schema"
	OptView            = "view"
	OptIncludeEntities = "includeEntities"
	OptIncludeEdges    = "includeEdges"
	OptInOut           = "includeIncomingOutgoing"
	OptBloom           = "bloomFilter"
	OptBloomBoth       = "bloomCheckBoth"

	ClassValidation          = "core.Validation"
	ClassAggregation         = "core.Aggregation"
	ClassPreAggFilter        = "core.PreAggregationFilter"
	ClassPostAggFilter       = "core.PostAggregationFilter"
	ClassTransform           = "core.Transform"
	ClassPostTransformFilter = "core.PostTransformationFilter"
	ClassDirectionFilter     = "core.EdgeEntityDirectionFilter"
	ClassBloomFilter         = "core.BloomFilter"
)

// PackageFromOptions rebuilds the key package and schema serialised
// into an iterator's options. Every server-side iterator starts here.
func PackageFromOptions(opts map[string]string) (Package, *schema.Schema, error) {
	pkg, err := Get(opts[OptKeyPackage])
	if err != nil {
		return nil, nil, x.IteratorConfigf("%v", err)
	}
	payload, err := tablet.DecodeConfig(opts[OptSchema])
	if err != nil {
		return nil, nil, err
	}
	s, err := schema.Unmarshal(payload)
	if err != nil {
		return nil, nil, err
	}
	if err := pkg.SetSchema(s); err != nil {
		return nil, nil, x.IteratorConfigf("%v", err)
	}
	return pkg, s, nil
}

// FunctorFromOptions resolves just the key functor named in an
// iterator's options; no schema needed.
func FunctorFromOptions(opts map[string]string) (Functor, error) {
	pkg, err := Get(opts[OptKeyPackage])
	if err != nil {
		return nil, x.IteratorConfigf("%v", err)
	}
	return pkg.Functor(), nil
}

// ViewFromOptions rebuilds the view serialised into an iterator's
// options.
func ViewFromOptions(opts map[string]string) (*view.View, error) {
	payload, err := tablet.DecodeConfig(opts[OptView])
	if err != nil {
		return nil, err
	}
	return view.Unmarshal(payload)
}
