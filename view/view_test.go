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

package view

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

const schemaJSON = `{
	"edges": {
		"e": {
			"source": "string",
			"destination": "string",
			"properties": [
				{"name": "kind", "type": "string"},
				{"name": "count", "type": "int", "aggregator": "sum"},
				{"name": "note", "type": "string"}
			],
			"groupBy": ["kind"]
		}
	}
}`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(schemaJSON))
	require.NoError(t, err)
	return s
}

func TestParseAndFilter(t *testing.T) {
	s := testSchema(t)
	v, err := Parse(s, []byte(`{
		"edges": {
			"e": {
				"postAggregationFilter": [
					{"selection": ["count"], "predicate": "gt", "args": [5]}
				]
			}
		}
	}`))
	require.NoError(t, err)

	gv := v.Group("e")
	require.NotNil(t, gv)
	require.Len(t, gv.PostAggregationFilter, 1)

	pass, err := TestAll(gv.PostAggregationFilter,
		element.Properties{"count": types.Int(7)})
	require.NoError(t, err)
	require.True(t, pass)

	pass, err = TestAll(gv.PostAggregationFilter,
		element.Properties{"count": types.Int(5)})
	require.NoError(t, err)
	require.False(t, pass)
}

func TestPreAggregationFilterRestrictedToGroupBy(t *testing.T) {
	s := testSchema(t)
	_, err := Parse(s, []byte(`{
		"edges": {
			"e": {
				"preAggregationFilter": [
					{"selection": ["count"], "predicate": "gt", "args": [5]}
				]
			}
		}
	}`))
	require.Error(t, err, "count is not group-by, so it must filter after aggregation")
	require.True(t, errors.Is(err, x.ErrOperation))

	_, err = Parse(s, []byte(`{
		"edges": {
			"e": {
				"preAggregationFilter": [
					{"selection": ["kind"], "predicate": "eq", "args": ["road"]}
				]
			}
		}
	}`))
	require.NoError(t, err, "group-by properties are safe above aggregation")
}

func TestValidateRejections(t *testing.T) {
	s := testSchema(t)

	cases := []string{
		`{"edges": {"missing": {}}}`,
		`{"entities": {"e": {}}}`,
		`{"edges": {"e": {"postAggregationFilter": [
			{"selection": ["nope"], "predicate": "exists"}]}}}`,
		`{"edges": {"e": {"groupBy": ["count"]}}}`,
		`{"edges": {"e": {"transformer": {
			"selection": ["count"], "function": "nope", "projection": ["count"]}}}}`,
		`{"edges": {"e": {"transformer": {
			"selection": ["count"], "function": "identity", "projection": ["kind"]}}}}`,
	}
	for _, js := range cases {
		_, err := Parse(s, []byte(js))
		require.Error(t, err, js)
	}
}

func TestViewMarshalRoundTrip(t *testing.T) {
	s := testSchema(t)
	v, err := Parse(s, []byte(`{
		"edges": {
			"e": {
				"preAggregationFilter": [
					{"selection": ["kind"], "predicate": "eq", "args": ["road"]}
				],
				"postAggregationFilter": [
					{"selection": ["count"], "predicate": "gt", "args": [5]}
				],
				"postTransformationFilter": [
					{"selection": ["note"], "predicate": "exists"}
				],
				"transformer": {
					"selection": ["count"],
					"function": "scale",
					"args": [10],
					"projection": ["count"]
				},
				"groupBy": []
			}
		}
	}`))
	require.NoError(t, err)

	data, err := v.Marshal()
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)

	gv := got.Group("e")
	require.NotNil(t, gv)
	require.Len(t, gv.PreAggregationFilter, 1)
	require.Len(t, gv.PostAggregationFilter, 1)
	require.Len(t, gv.PostTransformationFilter, 1)
	require.NotNil(t, gv.Transformer)
	require.Equal(t, "scale", gv.Transformer.Function)
	require.Equal(t, []string{"count"}, gv.Transformer.Projection)
	require.True(t, gv.HasGroupBy)
	require.Empty(t, gv.GroupBy)
	require.NoError(t, got.Validate(s))
}

func TestTransformerApply(t *testing.T) {
	tr := &Transformer{
		Selection:  []string{"count"},
		Function:   "scale",
		Args:       []types.Value{types.Int(10)},
		Projection: []string{"count"},
	}
	props := element.Properties{"count": types.Int(7)}
	require.NoError(t, tr.Apply(props))
	require.True(t, types.Equal(types.Int(70), props["count"]))
}
