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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/types"
)

func covered(ranges []tablet.Range, row []byte) bool {
	for _, r := range ranges {
		if r.Contains(row) {
			return true
		}
	}
	return false
}

// Range completeness: an entity seed's ranges cover exactly the rows
// of elements touching the seed vertex.
func TestEntitySeedRangeCompleteness(t *testing.T) {
	pkg := testPackage(t)
	conv := pkg.Converter()
	rf := pkg.Ranges()

	props := element.Properties{"kind": types.String("k"), "count": types.Int(1)}
	entity1 := &element.Entity{Group: "ent", Vertex: types.String("1"),
		Properties: element.Properties{}}
	entity10 := &element.Entity{Group: "ent", Vertex: types.String("10"),
		Properties: element.Properties{}}
	edge12 := &element.Edge{Group: "e", Source: types.String("1"),
		Destination: types.String("2"), Directed: true, Properties: props}
	edge23 := &element.Edge{Group: "e", Source: types.String("2"),
		Destination: types.String("3"), Directed: true, Properties: props}

	k1, _, err := conv.KeysFromElement(entity1)
	require.NoError(t, err)
	k10, _, err := conv.KeysFromElement(entity10)
	require.NoError(t, err)
	e12first, e12second, err := conv.KeysFromElement(edge12)
	require.NoError(t, err)
	e23first, e23second, err := conv.KeysFromElement(edge23)
	require.NoError(t, err)

	seed := element.EntitySeed{Vertex: types.String("1")}

	both, err := rf.RangesForSeed(seed, keys.RangeOptions{
		IncludeEntities: true, IncludeEdges: true})
	require.NoError(t, err)
	require.True(t, covered(both, k1.Row), "entity row of the seed")
	require.True(t, covered(both, e12first.Row), "source-first edge row")
	require.False(t, covered(both, e12second.Row), "dest-first row lives under vertex 2")
	require.False(t, covered(both, k10.Row), "vertex 10 is not vertex 1")
	require.False(t, covered(both, e23first.Row))
	require.False(t, covered(both, e23second.Row))

	entOnly, err := rf.RangesForSeed(seed, keys.RangeOptions{IncludeEntities: true})
	require.NoError(t, err)
	require.True(t, covered(entOnly, k1.Row))
	require.False(t, covered(entOnly, e12first.Row))

	edgeOnly, err := rf.RangesForSeed(seed, keys.RangeOptions{IncludeEdges: true})
	require.NoError(t, err)
	require.False(t, covered(edgeOnly, k1.Row))
	require.True(t, covered(edgeOnly, e12first.Row))

	_, err = rf.RangesForSeed(seed, keys.RangeOptions{})
	require.Error(t, err)
}

func TestEdgeSeedRange(t *testing.T) {
	pkg := testPackage(t)
	conv := pkg.Converter()
	rf := pkg.Ranges()

	props := element.Properties{"kind": types.String("k"), "count": types.Int(1)}
	edge := &element.Edge{Group: "e", Source: types.String("a"),
		Destination: types.String("b"), Directed: true, Properties: props}
	first, second, err := conv.KeysFromElement(edge)
	require.NoError(t, err)

	ranges, err := rf.RangesForSeed(element.EdgeSeed{
		Source: types.String("a"), Destination: types.String("b"), Directed: true,
	}, keys.RangeOptions{IncludeEdges: true})
	require.NoError(t, err)
	require.True(t, covered(ranges, first.Row), "source-first form is the point range")
	require.False(t, covered(ranges, second.Row))
}

func TestRangeSeed(t *testing.T) {
	pkg := testPackage(t)
	conv := pkg.Converter()
	rf := pkg.Ranges()

	rows := func(v string) []byte {
		k, _, err := conv.KeysFromElement(&element.Entity{Group: "ent",
			Vertex: types.String(v), Properties: element.Properties{}})
		require.NoError(t, err)
		return k.Row
	}

	ranges, err := rf.RangesForSeed(element.RangeSeed{
		Lo: types.String("b"), Hi: types.String("d"),
	}, keys.RangeOptions{IncludeEntities: true, IncludeEdges: true})
	require.NoError(t, err)

	require.False(t, covered(ranges, rows("a")))
	require.True(t, covered(ranges, rows("b")))
	require.True(t, covered(ranges, rows("c")))
	require.True(t, covered(ranges, rows("d")))
	require.False(t, covered(ranges, rows("e")))
}
