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

package types

import "github.com/wiltonlazary/gaffer/x"

// Aggregator merges two property values that share an aggregation key.
// Declared aggregators must be commutative; merge order across the two
// dual-keyed edge forms and across write batches is not defined.
type Aggregator interface {
	Name() string
	Apply(a, b Value) (Value, error)
}

var aggregators = make(map[string]Aggregator)

// RegisterAggregator installs an aggregator under its name. Duplicate
// registration is a programming error.
func RegisterAggregator(a Aggregator) {
	name := a.Name()
	if _, ok := aggregators[name]; ok {
		x.AssertTruef(false, "duplicate aggregator %q", name)
	}
	aggregators[name] = a
}

// GetAggregator looks up a registered aggregator by name.
func GetAggregator(name string) (Aggregator, error) {
	a, ok := aggregators[name]
	if !ok {
		return nil, x.Schemaf("unknown aggregator %q", name)
	}
	return a, nil
}

func init() {
	RegisterAggregator(sumAggregator{})
	RegisterAggregator(maxAggregator{})
	RegisterAggregator(minAggregator{})
	RegisterAggregator(firstAggregator{})
}

type sumAggregator struct{}

func (sumAggregator) Name() string { return "sum" }

func (sumAggregator) Apply(a, b Value) (Value, error) {
	if a.Tid != b.Tid {
		return Value{}, x.Codecf("sum over mixed types %s, %s", a.Tid, b.Tid)
	}
	switch a.Tid {
	case IntID:
		return Int(a.Int + b.Int), nil
	case FloatID:
		return Float(a.Float + b.Float), nil
	}
	return Value{}, x.Schemaf("sum not defined for type %s", a.Tid)
}

type maxAggregator struct{}

func (maxAggregator) Name() string { return "max" }

func (maxAggregator) Apply(a, b Value) (Value, error) {
	c, err := Compare(a, b)
	if err != nil {
		return Value{}, err
	}
	if c >= 0 {
		return a, nil
	}
	return b, nil
}

type minAggregator struct{}

func (minAggregator) Name() string { return "min" }

func (minAggregator) Apply(a, b Value) (Value, error) {
	c, err := Compare(a, b)
	if err != nil {
		return Value{}, err
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

// firstAggregator keeps the value from the newer entry. The aggregation
// iterator feeds entries newest first, so "first" is the left argument.
type firstAggregator struct{}

func (firstAggregator) Name() string { return "first" }

func (firstAggregator) Apply(a, _ Value) (Value, error) {
	return a, nil
}
