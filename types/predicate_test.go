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

package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPredicateEval(t *testing.T) {
	cases := []struct {
		name string
		pred Predicate
		vals []Value
		want bool
	}{
		{"gt pass", Predicate{Kind: PredGt, Args: []Value{Int(5)}}, []Value{Int(7)}, true},
		{"gt fail", Predicate{Kind: PredGt, Args: []Value{Int(5)}}, []Value{Int(5)}, false},
		{"le pass", Predicate{Kind: PredLe, Args: []Value{Int(5)}}, []Value{Int(5)}, true},
		{"eq pass", Predicate{Kind: PredEq, Args: []Value{String("a")}}, []Value{String("a")}, true},
		{"eq fail", Predicate{Kind: PredEq, Args: []Value{String("a")}}, []Value{String("b")}, false},
		{"exists pass", Predicate{Kind: PredExists}, []Value{Int(0)}, true},
		{"exists fail", Predicate{Kind: PredExists}, []Value{{}}, false},
		{"inRange pass", Predicate{Kind: PredInRange, Args: []Value{Int(1), Int(10)}},
			[]Value{Int(10)}, true},
		{"inRange fail", Predicate{Kind: PredInRange, Args: []Value{Int(1), Int(10)}},
			[]Value{Int(11)}, false},
		{"inSet pass", Predicate{Kind: PredInSet, Args: []Value{Int(1), Int(2)}},
			[]Value{Int(2)}, true},
		{"inSet fail", Predicate{Kind: PredInSet, Args: []Value{Int(1), Int(2)}},
			[]Value{Int(3)}, false},
		{"absent value fails comparisons", Predicate{Kind: PredGt, Args: []Value{Int(5)}},
			[]Value{{}}, false},
	}
	for _, tc := range cases {
		got, err := tc.pred.Eval(tc.vals)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}
}

func TestPredicateMarshalRoundTrip(t *testing.T) {
	preds := []Predicate{
		{Kind: PredExists},
		{Kind: PredGt, Args: []Value{Int(5)}},
		{Kind: PredInRange, Args: []Value{Float(1.5), Float(9.5)}},
		{Kind: PredInSet, Args: []Value{String("a"), String("b")}},
	}
	for _, p := range preds {
		var e Encbuf
		require.NoError(t, p.Marshal(&e))
		got, err := UnmarshalPredicate(NewDecbuf(e.Bytes()))
		require.NoError(t, err)
		require.Equal(t, p.Kind, got.Kind)
		require.Len(t, got.Args, len(p.Args))
		for i := range p.Args {
			require.True(t, Equal(p.Args[i], got.Args[i]))
		}
	}
}

func TestPredicateValidate(t *testing.T) {
	require.Error(t, Predicate{Kind: PredGt}.Validate())
	require.Error(t, Predicate{Kind: PredInRange, Args: []Value{Int(1)}}.Validate())
	require.Error(t, Predicate{Kind: PredInSet}.Validate())
	require.NoError(t, Predicate{Kind: PredExists}.Validate())
}
