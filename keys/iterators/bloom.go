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
	"encoding/base64"

	"github.com/dgraph-io/ristretto/v2/z"
	"github.com/dgryski/go-farm"

	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/x"
)

// newBloomFilter drops edges whose far endpoint cannot be in the
// query's seed set, using a bloom filter over fingerprinted vertex
// segments. False positives pass; the retriever re-verifies exactly on
// the client.
func newBloomFilter(opts map[string]string, src tablet.EntryStream) (tablet.EntryStream, error) {
	functor, err := keys.FunctorFromOptions(opts)
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(opts[keys.OptBloom])
	if err != nil {
		return nil, x.IteratorConfigf("bad bloom filter encoding: %v", err)
	}
	bloom, err := z.JSONUnmarshal(raw)
	if err != nil {
		return nil, x.IteratorConfigf("bad bloom filter: %v", err)
	}
	checkBoth := opts[keys.OptBloomBoth] == "true"

	return &filterStream{src: src, keep: func(e tablet.Entry) (bool, error) {
		first, second, marker, err := functor.RowParts(e.Key.Row)
		if err != nil {
			return false, err
		}
		if marker == keys.EntityFlag {
			return true, nil
		}
		if checkBoth && !bloom.Has(farm.Fingerprint64(first)) {
			return false, nil
		}
		return bloom.Has(farm.Fingerprint64(second)), nil
	}}, nil
}
