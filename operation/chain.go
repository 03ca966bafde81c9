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
	"context"

	"github.com/golang/glog"
)

// Step is one executable operation: input in, output out. Steps come
// from the store's handler methods, closed over their operation.
type Step[I, O any] func(ctx context.Context, in I) (O, error)

// Chain pipes operations together. The output type of each step is the
// input type of the next; Then enforces that at compile time, so a
// mismatched chain does not build.
type Chain[I, O any] struct {
	names []string
	run   Step[I, O]
}

// NewChain starts a chain from a single step.
func NewChain[I, O any](name string, step Step[I, O]) Chain[I, O] {
	return Chain[I, O]{names: []string{name}, run: step}
}

// Then appends a step consuming the chain's current output.
func Then[I, M, O any](c Chain[I, M], name string, next Step[M, O]) Chain[I, O] {
	names := append(append([]string(nil), c.names...), name)
	prev := c.run
	return Chain[I, O]{
		names: names,
		run: func(ctx context.Context, in I) (O, error) {
			mid, err := prev(ctx, in)
			if err != nil {
				var zero O
				return zero, err
			}
			return next(ctx, mid)
		},
	}
}

// Execute runs the chain. Intermediate results stream lazily where the
// steps support it; the chain aborts at the first failing step.
func (c Chain[I, O]) Execute(ctx context.Context, in I) (O, error) {
	glog.V(2).Infof("executing chain %v", c.names)
	return c.run(ctx, in)
}

// Names lists the step names, for logging.
func (c Chain[I, O]) Names() []string {
	return append([]string(nil), c.names...)
}
