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

package element

import "github.com/wiltonlazary/gaffer/types"

// Seed is a query starting point: a vertex, a specific edge, or a range
// of vertices.
type Seed interface {
	isSeed()
}

// EntitySeed selects everything touching one vertex.
type EntitySeed struct {
	Vertex types.Value
}

// EdgeSeed selects one specific edge by its endpoints and directedness.
type EdgeSeed struct {
	Source      types.Value
	Destination types.Value
	Directed    bool
}

// RangeSeed selects all vertices in [Lo, Hi] by serialised order.
type RangeSeed struct {
	Lo types.Value
	Hi types.Value
}

func (EntitySeed) isSeed() {}
func (EdgeSeed) isSeed()   {}
func (RangeSeed) isSeed()  {}
