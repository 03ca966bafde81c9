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
	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/x"
)

// functor extracts endpoint segments from byte-entity rows. The first
// segment doubles as the bloom-filter key prefix: all keys touching a
// vertex share it.
type functor struct{}

func (functor) Name() string { return "byteEntity.CoreKeyBloomFunctor" }

func (functor) RowParts(row []byte) (first, second []byte, marker byte, err error) {
	parts := keys.SplitRow(row)
	switch len(parts) {
	case 2:
		if len(parts[1]) != 1 || parts[1][0] != keys.EntityFlag {
			return nil, nil, 0, x.Codecf("malformed entity row")
		}
		return parts[0], nil, keys.EntityFlag, nil
	case 3:
		if len(parts[2]) != 1 {
			return nil, nil, 0, x.Codecf("malformed edge row")
		}
		return parts[0], parts[1], parts[2][0], nil
	}
	return nil, nil, 0, x.Codecf("row has %d segments", len(parts))
}
