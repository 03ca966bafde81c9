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

import (
	"strings"

	"github.com/wiltonlazary/gaffer/x"
)

// TransformFunc rewrites the values selected by a transformer into the
// values stored under its projection.
type TransformFunc func(args []Value, in []Value) ([]Value, error)

var functions = make(map[string]TransformFunc)

// RegisterFunction installs a transform function under its name.
func RegisterFunction(name string, fn TransformFunc) {
	if _, ok := functions[name]; ok {
		x.AssertTruef(false, "duplicate transform function %q", name)
	}
	functions[name] = fn
}

// GetFunction looks up a registered transform function.
func GetFunction(name string) (TransformFunc, error) {
	fn, ok := functions[name]
	if !ok {
		return nil, x.Operationf("unknown transform function %q", name)
	}
	return fn, nil
}

func init() {
	RegisterFunction("identity", func(_ []Value, in []Value) ([]Value, error) {
		return in, nil
	})

	RegisterFunction("uppercase", func(_ []Value, in []Value) ([]Value, error) {
		out := make([]Value, len(in))
		for i, v := range in {
			if v.Tid != StringID {
				return nil, x.Operationf("uppercase applied to %s value", v.Tid)
			}
			out[i] = String(strings.ToUpper(v.Str))
		}
		return out, nil
	})

	// scale multiplies numeric inputs by a constant factor argument.
	RegisterFunction("scale", func(args []Value, in []Value) ([]Value, error) {
		if len(args) != 1 {
			return nil, x.Operationf("scale takes one argument, got %d", len(args))
		}
		factor := args[0]
		out := make([]Value, len(in))
		for i, v := range in {
			switch {
			case v.Tid == IntID && factor.Tid == IntID:
				out[i] = Int(v.Int * factor.Int)
			case v.Tid == FloatID && factor.Tid == FloatID:
				out[i] = Float(v.Float * factor.Float)
			default:
				return nil, x.Operationf("scale applied to %s value with %s factor",
					v.Tid, factor.Tid)
			}
		}
		return out, nil
	})
}
