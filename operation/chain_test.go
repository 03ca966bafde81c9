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
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestChainPipesTypedSteps(t *testing.T) {
	double := func(_ context.Context, in int) (int, error) { return in * 2, nil }
	describe := func(_ context.Context, in int) (string, error) {
		return map[int]string{8: "eight"}[in], nil
	}

	chain := Then(Then(NewChain("double", double), "double", double),
		"describe", describe)
	require.Equal(t, []string{"double", "double", "describe"}, chain.Names())

	out, err := chain.Execute(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "eight", out)
}

func TestChainAbortsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	chain := Then(
		NewChain("fail", func(_ context.Context, in int) (int, error) {
			return 0, boom
		}),
		"next", func(_ context.Context, in int) (int, error) {
			ran = true
			return in, nil
		})

	_, err := chain.Execute(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	require.False(t, ran, "downstream steps must not run after a failure")
}
