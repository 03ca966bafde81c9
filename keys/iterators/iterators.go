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

// Package iterators holds the server-side iterator implementations:
// validation, aggregation, the filter stages, transformation and the
// edge/entity direction filter. Each registers itself with the tablet
// iterator registry under its class name; importing this package for
// side effects makes them available to the embedded engine.
package iterators

import (
	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/view"
)

func init() {
	tablet.RegisterIterator(keys.ClassValidation, newValidation)
	tablet.RegisterIterator(keys.ClassAggregation, newAggregation)
	tablet.RegisterIterator(keys.ClassPreAggFilter, newFilterStage(
		func(gv *view.GroupView) []view.Filter { return gv.PreAggregationFilter }))
	tablet.RegisterIterator(keys.ClassPostAggFilter, newFilterStage(
		func(gv *view.GroupView) []view.Filter { return gv.PostAggregationFilter }))
	tablet.RegisterIterator(keys.ClassTransform, newTransform)
	tablet.RegisterIterator(keys.ClassPostTransformFilter, newFilterStage(
		func(gv *view.GroupView) []view.Filter { return gv.PostTransformationFilter }))
	tablet.RegisterIterator(keys.ClassDirectionFilter, newDirectionFilter)
	tablet.RegisterIterator(keys.ClassBloomFilter, newBloomFilter)
}

// stageEnv is what most stages need: the codec and the schema, plus
// the view when the options carry one.
type stageEnv struct {
	conv   keys.Converter
	schema *schema.Schema
	view   *view.View
}

func newStageEnv(opts map[string]string, withView bool) (*stageEnv, error) {
	pkg, s, err := keys.PackageFromOptions(opts)
	if err != nil {
		return nil, err
	}
	env := &stageEnv{conv: pkg.Converter(), schema: s}
	if withView {
		if env.view, err = keys.ViewFromOptions(opts); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// decode turns an entry into its element and group definition.
func (env *stageEnv) decode(e tablet.Entry) (element.Element, *schema.Group, error) {
	el, err := env.conv.ElementFromKeyValue(e.Key, e.Value, false)
	if err != nil {
		return nil, nil, err
	}
	g, _ := env.schema.Group(el.ElementGroup())
	return el, g, nil
}

// filterStream drops entries a stage rejects. Decode errors surface as
// stream errors: a corrupt stored cell is a store fault, not a skip.
type filterStream struct {
	src  tablet.EntryStream
	keep func(e tablet.Entry) (bool, error)
}

func (f *filterStream) Next() (tablet.Entry, bool, error) {
	for {
		e, ok, err := f.src.Next()
		if !ok || err != nil {
			return tablet.Entry{}, false, err
		}
		keep, err := f.keep(e)
		if err != nil {
			return tablet.Entry{}, false, err
		}
		if keep {
			return e, true, nil
		}
	}
}

func (f *filterStream) Close() { f.src.Close() }
