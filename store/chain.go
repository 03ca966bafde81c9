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

package store

import (
	"context"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/operation"
)

// Step adapters for operation chains. Each closes over the store, the
// user and an operation template; the chain supplies the seeds or
// elements flowing from the previous step.

// GetElementsStep fetches elements for the seeds flowing in.
func GetElementsStep(s *Store, u User,
	op operation.GetElements) operation.Step[[]element.Seed, element.Stream] {
	return func(ctx context.Context, seeds []element.Seed) (element.Stream, error) {
		op.Seeds = seeds
		return s.GetElements(ctx, u, op)
	}
}

// AdjacentSeedsStep walks one hop and emits the far endpoints.
func AdjacentSeedsStep(s *Store, u User,
	op operation.GetAdjacentEntitySeeds) operation.Step[[]element.Seed, []element.Seed] {
	return func(ctx context.Context, seeds []element.Seed) ([]element.Seed, error) {
		op.Seeds = seeds
		stream, err := s.GetAdjacentEntitySeeds(ctx, u, op)
		if err != nil {
			return nil, err
		}
		defer stream.Close()
		var out []element.Seed
		for stream.Next() {
			out = append(out, stream.Seed())
		}
		return out, stream.Err()
	}
}

// AddElementsStep consumes the element stream flowing in and writes
// it.
func AddElementsStep(s *Store) operation.Step[element.Stream, operation.AddSummary] {
	return func(ctx context.Context, elems element.Stream) (operation.AddSummary, error) {
		return s.AddElements(ctx, operation.AddElements{Elements: elems})
	}
}
