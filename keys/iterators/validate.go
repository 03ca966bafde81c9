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
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/types"
)

// newValidation drops entries whose schema-declared validators reject
// the decoded element. An exists validator makes a property required;
// other validators pass on absent properties.
func newValidation(opts map[string]string, src tablet.EntryStream) (tablet.EntryStream, error) {
	env, err := newStageEnv(opts, false)
	if err != nil {
		return nil, err
	}
	return &filterStream{src: src, keep: func(e tablet.Entry) (bool, error) {
		el, g, err := env.decode(e)
		if err != nil {
			return false, err
		}
		props := el.Props()
		for _, p := range g.Properties {
			if p.Validator == nil {
				continue
			}
			v, present := props[p.Name]
			if !present {
				if p.Validator.Kind == types.PredExists {
					return false, nil
				}
				continue
			}
			ok, err := p.Validator.Eval([]types.Value{v})
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}}, nil
}
