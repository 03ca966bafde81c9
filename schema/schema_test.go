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

package schema

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

const schemaJSON = `{
	"entities": {
		"cardinality": {
			"vertex": "string",
			"properties": [
				{"name": "prop", "type": "int", "aggregator": "max",
				 "validator": {"predicate": "ge", "args": [0]}},
				{"name": "vis", "type": "string"}
			],
			"visibilityProperty": "vis"
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

func TestParse(t *testing.T) {
	s, err := Parse([]byte(schemaJSON))
	require.NoError(t, err)

	g, ok := s.Group("e")
	require.True(t, ok)
	require.True(t, g.IsEdge)
	require.Equal(t, types.StringID, g.SourceType)
	require.True(t, g.IsGroupBy("kind"))
	require.False(t, g.IsGroupBy("count"))
	require.Len(t, g.ValueProps(), 1)
	require.Equal(t, "count", g.ValueProps()[0].Name)

	ent, ok := s.Group("cardinality")
	require.True(t, ok)
	require.False(t, ent.IsEdge)
	require.Equal(t, "vis", ent.VisibilityProperty)
	p, ok := ent.Property("prop")
	require.True(t, ok)
	require.NotNil(t, p.Validator)
	require.Equal(t, types.PredGe, p.Validator.Kind)
	// The visibility property stays out of the value bytes.
	for _, vp := range ent.ValueProps() {
		require.NotEqual(t, "vis", vp.Name)
	}
}

func TestParseRejectsBadSchemas(t *testing.T) {
	cases := []string{
		`{`,
		`{}`,
		`{"edges": {"e": {"source": "string", "destination": "string",
			"groupBy": ["missing"]}}}`,
		`{"entities": {"a": {"vertex": "nope"}}}`,
		`{"entities": {"a": {"vertex": "string",
			"properties": [{"name": "p", "type": "int", "aggregator": "nope"}]}}}`,
		`{"entities": {"a": {"vertex": "string",
			"properties": [{"name": "v", "type": "int"}],
			"visibilityProperty": "v"}}}`,
	}
	for _, js := range cases {
		_, err := Parse([]byte(js))
		require.Error(t, err, js)
		require.True(t, errors.Is(err, x.ErrSchema), "wrong kind for %s: %v", js, err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	s, err := Parse([]byte(schemaJSON))
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	require.Len(t, got.Entities, 1)
	require.Len(t, got.Edges, 1)
	g, ok := got.Group("e")
	require.True(t, ok)
	require.Equal(t, []string{"kind"}, g.GroupBy)
	require.Equal(t, types.StringID, g.DestinationType)
	p, ok := g.Property("count")
	require.True(t, ok)
	require.Equal(t, "sum", p.Aggregator)

	ent, ok := got.Group("cardinality")
	require.True(t, ok)
	require.Equal(t, "vis", ent.VisibilityProperty)
	pv, ok := ent.Property("prop")
	require.True(t, ok)
	require.NotNil(t, pv.Validator)
	require.Len(t, pv.Validator.Args, 1)
	require.True(t, types.Equal(types.Int(0), pv.Validator.Args[0]))
}
