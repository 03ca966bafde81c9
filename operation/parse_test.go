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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/types"
)

const opSchema = `{
	"edges": {
		"e": {
			"source": "string",
			"destination": "string",
			"properties": [{"name": "count", "type": "int", "aggregator": "sum"}]
		}
	}
}`

func opTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(opSchema))
	require.NoError(t, err)
	return s
}

func TestParseGetElements(t *testing.T) {
	s := opTestSchema(t)
	op, err := Parse(s, []byte(`{
		"class": "GetElements",
		"seeds": [{"entity": "1"}, {"edge": ["1", "2", true]}],
		"includeIncomingOutgoingType": "OUTGOING",
		"includeEdges": "DIRECTED",
		"includeEntities": false,
		"view": {"edges": {"e": {"postAggregationFilter": [
			{"selection": ["count"], "predicate": "gt", "args": [5]}
		]}}}
	}`))
	require.NoError(t, err)

	get, ok := op.(GetElements)
	require.True(t, ok)
	require.Len(t, get.Seeds, 2)
	require.Equal(t, element.EntitySeed{Vertex: types.String("1")}, get.Seeds[0])
	es, ok := get.Seeds[1].(element.EdgeSeed)
	require.True(t, ok)
	require.True(t, es.Directed)
	require.Equal(t, InOutOutgoing, get.InOut)
	require.Equal(t, EdgesDirected, get.IncludeEdges)
	require.False(t, get.IncludeEntities)
	require.NotNil(t, get.View.Group("e"))
}

func TestParseDefaults(t *testing.T) {
	s := opTestSchema(t)
	op, err := Parse(s, []byte(`{"class": "GetAllElements"}`))
	require.NoError(t, err)
	all, ok := op.(GetAllElements)
	require.True(t, ok)
	require.True(t, all.IncludeEntities)
	require.Equal(t, EdgesAll, all.IncludeEdges)
	require.NotNil(t, all.View.Group("e"), "no view admits every group")
}

func TestParseRanges(t *testing.T) {
	s := opTestSchema(t)
	op, err := Parse(s, []byte(`{
		"class": "GetElementsInRanges",
		"seeds": [{"range": ["a", "b"]}]
	}`))
	require.NoError(t, err)
	ranges, ok := op.(GetElementsInRanges)
	require.True(t, ok)
	require.Len(t, ranges.Ranges, 1)
	require.True(t, types.Equal(types.String("a"), ranges.Ranges[0].Lo))
}

func TestParseRejects(t *testing.T) {
	s := opTestSchema(t)
	for _, js := range []string{
		`{`,
		`{"class": "Nope"}`,
		`{"class": "GetElements", "seeds": [{"edge": ["1", "2", "yes"]}]}`,
		`{"class": "GetElements", "seeds": [{}]}`,
	} {
		_, err := Parse(s, []byte(js))
		require.Error(t, err, js)
	}
}
