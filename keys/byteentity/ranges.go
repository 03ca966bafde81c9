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

package byteentity

import (
	"bytes"
	"sort"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

type rangeFactory struct {
	conv *converter
}

func seg(v types.Value) ([]byte, error) {
	raw, err := v.Marshal()
	if err != nil {
		return nil, err
	}
	return keys.Escape(raw), nil
}

func (f *rangeFactory) RangesForSeed(seed element.Seed,
	opts keys.RangeOptions) ([]tablet.Range, error) {
	var ranges []tablet.Range
	switch s := seed.(type) {
	case element.EntitySeed:
		vseg, err := seg(s.Vertex)
		if err != nil {
			return nil, err
		}
		switch {
		case opts.IncludeEdges:
			// Covers every edge with the seed as row-first endpoint.
			// The entity row also falls inside; the direction filter
			// or range narrowing decides whether entities survive.
			start := append(append([]byte{}, vseg...), keys.Delimiter)
			end := append(append([]byte{}, vseg...), keys.Delimiter, 0xFF)
			if opts.IncludeEntities {
				ranges = append(ranges, tablet.Range{Start: start, End: end})
			} else {
				// Edge rows only: the byte after the delimiter starts the
				// far endpoint's segment, which may sort below or above the
				// entity flag, so cut the single entity row out instead.
				entityRow := append(append([]byte{}, start...), keys.EntityFlag)
				ranges = append(ranges,
					tablet.Range{Start: start, End: entityRow},
					tablet.Range{Start: append(append([]byte{}, entityRow...), 0x00), End: end})
			}
		case opts.IncludeEntities:
			start := append(append([]byte{}, vseg...), keys.Delimiter, keys.EntityFlag)
			end := append(append([]byte{}, start...), 0x00)
			ranges = append(ranges, tablet.Range{Start: start, End: end})
		default:
			return nil, x.Operationf("seed selects neither entities nor edges")
		}

	case element.EdgeSeed:
		srcSeg, err := seg(s.Source)
		if err != nil {
			return nil, err
		}
		dstSeg, err := seg(s.Destination)
		if err != nil {
			return nil, err
		}
		marker := keys.Undirected
		if s.Directed {
			marker = keys.DirectedSourceFirst
		}
		row := edgeRow(srcSeg, dstSeg, marker)
		end := append(append([]byte{}, row...), 0x00)
		ranges = append(ranges, tablet.Range{Start: row, End: end})

	case element.RangeSeed:
		loSeg, err := seg(s.Lo)
		if err != nil {
			return nil, err
		}
		hiSeg, err := seg(s.Hi)
		if err != nil {
			return nil, err
		}
		end := append(append([]byte{}, hiSeg...), 0xFF)
		ranges = append(ranges, tablet.Range{Start: loSeg, End: end})

	default:
		return nil, x.Operationf("unknown seed kind %T", seed)
	}

	sort.Slice(ranges, func(i, j int) bool {
		return bytes.Compare(ranges[i].Start, ranges[j].Start) < 0
	})
	return ranges, nil
}
