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

package tablet

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/wiltonlazary/gaffer/x"
)

func TestConfigRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("schema bytes ", 100))
	opt := EncodeConfig(payload)
	got, err := DecodeConfig(opt)
	require.NoError(t, err)
	require.Equal(t, payload, got)

	// Compact on the wire: repetitive payloads shrink.
	require.Less(t, len(opt), len(payload))
}

func TestDecodeConfigRejectsBadInput(t *testing.T) {
	_, err := DecodeConfig("not base64 !!!")
	require.True(t, errors.Is(err, x.ErrIteratorConfig))

	_, err = DecodeConfig("")
	require.True(t, errors.Is(err, x.ErrIteratorConfig))

	// Unknown version byte.
	bad := base64.StdEncoding.EncodeToString([]byte{0xEE, 1, 2, 3})
	_, err = DecodeConfig(bad)
	require.True(t, errors.Is(err, x.ErrIteratorConfig))
}

func TestAuthorisations(t *testing.T) {
	auths := Authorisations{"public", "secret"}
	require.True(t, auths.Covers(nil))
	require.True(t, auths.Covers([]byte("public")))
	require.True(t, auths.Covers([]byte("topsecret|public")))
	require.False(t, auths.Covers([]byte("topsecret")))
	require.False(t, Authorisations(nil).Covers([]byte("public")))
}

func TestRangeContains(t *testing.T) {
	r := Range{Start: []byte("b"), End: []byte("d")}
	require.False(t, r.Contains([]byte("a")))
	require.True(t, r.Contains([]byte("b")))
	require.True(t, r.Contains([]byte("c")))
	require.False(t, r.Contains([]byte("d")))

	unbounded := Range{Start: []byte("b")}
	require.True(t, unbounded.Contains([]byte("zzz")))
}
