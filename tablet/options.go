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

	"github.com/golang/snappy"

	"github.com/wiltonlazary/gaffer/x"
)

// Iterator options are string-keyed, so structured configuration is
// packed as a version-tagged snappy block, base64-wrapped. The config
// path is hot during scan fanout; keep it compact.

const configVersion = byte(1)

// EncodeConfig packs payload bytes into an iterator option value.
func EncodeConfig(payload []byte) string {
	compressed := snappy.Encode(nil, payload)
	packed := make([]byte, 0, 1+len(compressed))
	packed = append(packed, configVersion)
	packed = append(packed, compressed...)
	return base64.StdEncoding.EncodeToString(packed)
}

// DecodeConfig unpacks an option value produced by EncodeConfig.
func DecodeConfig(s string) ([]byte, error) {
	packed, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, x.IteratorConfigf("bad config encoding: %v", err)
	}
	if len(packed) == 0 {
		return nil, x.IteratorConfigf("empty config")
	}
	if packed[0] != configVersion {
		return nil, x.IteratorConfigf("unknown config version %d", packed[0])
	}
	payload, err := snappy.Decode(nil, packed[1:])
	if err != nil {
		return nil, x.IteratorConfigf("bad config payload: %v", err)
	}
	return payload, nil
}
