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

// Package operation declares the operations clients submit. Operations
// are plain data; the store translates them into scans and writes.
// Kinds form a closed tagged variant: the store's dispatcher matches
// exhaustively and rejects anything else.
package operation

import (
	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/view"
)

// IncludeEdgeType selects which edges an operation returns.
type IncludeEdgeType string

const (
	EdgesAll        IncludeEdgeType = "ALL"
	EdgesDirected   IncludeEdgeType = "DIRECTED"
	EdgesUndirected IncludeEdgeType = "UNDIRECTED"
	EdgesNone       IncludeEdgeType = "NONE"
)

// InOutType selects edge direction relative to the seed.
type InOutType string

const (
	InOutEither   InOutType = "EITHER"
	InOutIncoming InOutType = "INCOMING"
	InOutOutgoing InOutType = "OUTGOING"
)

// GetElements fetches the elements touching the given seeds.
type GetElements struct {
	Seeds           []element.Seed
	View            *view.View
	IncludeEntities bool
	IncludeEdges    IncludeEdgeType
	InOut           InOutType
}

// GetAllElements scans the full table.
type GetAllElements struct {
	View            *view.View
	IncludeEntities bool
	IncludeEdges    IncludeEdgeType
}

// GetAdjacentEntitySeeds walks the edges touching the seeds and
// returns the far endpoints as fresh entity seeds.
type GetAdjacentEntitySeeds struct {
	Seeds []element.Seed
	View  *view.View
	InOut InOutType
}

// GetElementsWithinSet returns edges whose both endpoints are in the
// seed set, plus the seed entities.
type GetElementsWithinSet struct {
	Seeds           []element.EntitySeed
	View            *view.View
	IncludeEntities bool
	IncludeEdges    IncludeEdgeType
}

// GetElementsBetweenSets returns edges with one endpoint in set A and
// the other in set B, plus set-A entities.
type GetElementsBetweenSets struct {
	SeedsA          []element.EntitySeed
	SeedsB          []element.EntitySeed
	View            *view.View
	IncludeEntities bool
	IncludeEdges    IncludeEdgeType
	InOut           InOutType
}

// GetElementsInRanges returns the elements whose rows fall in the
// given vertex ranges.
type GetElementsInRanges struct {
	Ranges          []element.RangeSeed
	View            *view.View
	IncludeEntities bool
	IncludeEdges    IncludeEdgeType
}

// SummariseGroupOverRanges aggregates over vertex ranges regardless of
// the view's group-by, one summary element per (row, group).
type SummariseGroupOverRanges struct {
	Ranges          []element.RangeSeed
	View            *view.View
	IncludeEntities bool
	IncludeEdges    IncludeEdgeType
}

// AddElements writes a stream of elements. Per-element codec failures
// are logged and skipped; the summary reports them.
type AddElements struct {
	Elements element.Stream
}

// AddSummary is the result of AddElements: how many elements were
// written, how many were skipped, and the first per-element error.
type AddSummary struct {
	Written  int
	Skipped  int
	FirstErr error
}
