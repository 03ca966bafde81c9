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
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/types"
)

const testSchemaJSON = `{
	"entities": {
		"ent": {
			"vertex": "string",
			"properties": [
				{"name": "prop", "type": "int", "aggregator": "max"},
				{"name": "vis", "type": "string"},
				{"name": "ts", "type": "int"}
			],
			"visibilityProperty": "vis",
			"timestampProperty": "ts"
		}
	},
	"edges": {
		"e": {
			"source": "string",
			"destination": "string",
			"properties": [
				{"name": "kind", "type": "string"},
				{"name": "count", "type": "int", "aggregator": "sum"}
			],
			"groupBy": ["kind"]
		}
	}
}`

func testPackage(t *testing.T) keys.Package {
	t.Helper()
	s, err := schema.Parse([]byte(testSchemaJSON))
	require.NoError(t, err)
	pkg := New()
	require.NoError(t, pkg.SetSchema(s))
	return pkg
}

func TestEntityRoundTrip(t *testing.T) {
	pkg := testPackage(t)
	conv := pkg.Converter()

	ent := &element.Entity{
		Group:  "ent",
		Vertex: types.String("vertex-1"),
		Properties: element.Properties{
			"prop": types.Int(5),
			"vis":  types.String("public"),
			"ts":   types.Int(12345),
		},
	}
	key, second, err := conv.KeysFromElement(ent)
	require.NoError(t, err)
	require.Nil(t, second, "entities take a single key")
	require.Equal(t, []byte("ent"), key.ColFamily)
	require.Equal(t, []byte("public"), key.ColVisibility)
	require.EqualValues(t, 12345, key.Timestamp)

	value, err := conv.ValueFromElement(ent)
	require.NoError(t, err)

	got, err := conv.ElementFromKeyValue(key, value, false)
	require.NoError(t, err)
	gotEnt, ok := got.(*element.Entity)
	require.True(t, ok)
	require.Equal(t, "ent", gotEnt.Group)
	require.True(t, types.Equal(ent.Vertex, gotEnt.Vertex))
	for name, v := range ent.Properties {
		require.True(t, types.Equal(v, gotEnt.Properties[name]), "property %q", name)
	}
}

func TestEdgeDualKeying(t *testing.T) {
	pkg := testPackage(t)
	conv := pkg.Converter()

	edge := &element.Edge{
		Group:       "e",
		Source:      types.String("a"),
		Destination: types.String("b"),
		Directed:    true,
		Properties: element.Properties{
			"kind":  types.String("road"),
			"count": types.Int(3),
		},
	}
	first, second, err := conv.KeysFromElement(edge)
	require.NoError(t, err)
	require.NotNil(t, second, "edges take two keys")

	// The two forms agree on everything except the row.
	require.Equal(t, first.ColFamily, second.ColFamily)
	require.Equal(t, first.ColQualifier, second.ColQualifier)
	require.Equal(t, first.ColVisibility, second.ColVisibility)
	require.Equal(t, first.Timestamp, second.Timestamp)
	require.NotEqual(t, first.Row, second.Row)

	require.Equal(t, byte(keys.DirectedSourceFirst), first.Row[len(first.Row)-1])
	require.Equal(t, byte(keys.DirectedDestFirst), second.Row[len(second.Row)-1])

	value, err := conv.ValueFromElement(edge)
	require.NoError(t, err)

	// Either key decodes to the same logical edge.
	got1, err := conv.ElementFromKeyValue(first, value, true)
	require.NoError(t, err)
	e1 := got1.(*element.Edge)
	require.True(t, types.Equal(edge.Source, e1.Source))
	require.True(t, types.Equal(edge.Destination, e1.Destination))
	require.True(t, e1.Directed)
	require.Equal(t, element.MatchedSource, e1.Matched)
	require.True(t, types.Equal(types.Int(3), e1.Properties["count"]))
	require.True(t, types.Equal(types.String("road"), e1.Properties["kind"]))

	got2, err := conv.ElementFromKeyValue(*second, value, true)
	require.NoError(t, err)
	e2 := got2.(*element.Edge)
	require.True(t, types.Equal(edge.Source, e2.Source), "logical order restored")
	require.True(t, types.Equal(edge.Destination, e2.Destination))
	require.Equal(t, element.MatchedDestination, e2.Matched)
}

func TestUndirectedEdgeMarkers(t *testing.T) {
	pkg := testPackage(t)
	conv := pkg.Converter()

	edge := &element.Edge{
		Group:       "e",
		Source:      types.String("x"),
		Destination: types.String("y"),
		Directed:    false,
		Properties: element.Properties{
			"kind":  types.String("sees"),
			"count": types.Int(1),
		},
	}
	first, second, err := conv.KeysFromElement(edge)
	require.NoError(t, err)
	require.Equal(t, byte(keys.Undirected), first.Row[len(first.Row)-1])
	require.Equal(t, byte(keys.Undirected), second.Row[len(second.Row)-1])
}

func TestCodecErrors(t *testing.T) {
	pkg := testPackage(t)
	conv := pkg.Converter()

	// Unknown group.
	_, _, err := conv.KeysFromElement(&element.Entity{
		Group: "nope", Vertex: types.String("v"), Properties: element.Properties{},
	})
	require.Error(t, err)

	// Missing group-by property.
	_, _, err = conv.KeysFromElement(&element.Edge{
		Group: "e", Source: types.String("a"), Destination: types.String("b"),
		Directed: true, Properties: element.Properties{"count": types.Int(1)},
	})
	require.Error(t, err)

	// Wrong vertex type for the group.
	_, _, err = conv.KeysFromElement(&element.Entity{
		Group: "ent", Vertex: types.Int(1), Properties: element.Properties{},
	})
	require.Error(t, err)
}
