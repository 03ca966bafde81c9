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

package iterators

import (
	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/operation"
	"github.com/wiltonlazary/gaffer/tablet"
)

// newDirectionFilter reads the row marker byte and drops entries whose
// kind or direction the operation excludes. The row-first endpoint is
// the seed end, so OUTGOING keeps source-first directed rows and
// INCOMING keeps destination-first ones; undirected edges pass either
// way.
func newDirectionFilter(opts map[string]string, src tablet.EntryStream) (tablet.EntryStream, error) {
	functor, err := keys.FunctorFromOptions(opts)
	if err != nil {
		return nil, err
	}
	includeEntities := opts[keys.OptIncludeEntities] == "true"
	includeEdges := operation.IncludeEdgeType(opts[keys.OptIncludeEdges])
	inOut := operation.InOutType(opts[keys.OptInOut])

	return &filterStream{src: src, keep: func(e tablet.Entry) (bool, error) {
		_, _, marker, err := functor.RowParts(e.Key.Row)
		if err != nil {
			return false, err
		}
		if marker == keys.EntityFlag {
			return includeEntities, nil
		}
		switch includeEdges {
		case operation.EdgesNone:
			return false, nil
		case operation.EdgesDirected:
			if marker == keys.Undirected {
				return false, nil
			}
		case operation.EdgesUndirected:
			if marker != keys.Undirected {
				return false, nil
			}
		}
		switch inOut {
		case operation.InOutOutgoing:
			return marker != keys.DirectedDestFirst, nil
		case operation.InOutIncoming:
			return marker != keys.DirectedSourceFirst, nil
		}
		return true, nil
	}}, nil
}
