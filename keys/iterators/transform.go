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
	"github.com/wiltonlazary/gaffer/x"
)

// newTransform applies each group's view transformer and re-encodes
// the value bytes. Transformed values flow to the stages above and to
// the client; the key is untouched.
func newTransform(opts map[string]string, src tablet.EntryStream) (tablet.EntryStream, error) {
	env, err := newStageEnv(opts, true)
	if err != nil {
		return nil, err
	}
	return &transformStream{env: env, src: src}, nil
}

type transformStream struct {
	env *stageEnv
	src tablet.EntryStream
}

func (t *transformStream) Next() (tablet.Entry, bool, error) {
	for {
		e, ok, err := t.src.Next()
		if !ok || err != nil {
			return tablet.Entry{}, false, err
		}
		gv := t.env.view.Group(string(e.Key.ColFamily))
		if gv == nil || gv.Transformer == nil {
			return e, true, nil
		}
		el, g, err := t.env.decode(e)
		if err != nil {
			return tablet.Entry{}, false, err
		}
		props := el.Props()
		if err := gv.Transformer.Apply(props); err != nil {
			return tablet.Entry{}, false, x.Operationf("transform group %q: %v", g.Name, err)
		}
		value, err := t.env.conv.ValueFromProps(g, props)
		if err != nil {
			return tablet.Entry{}, false, err
		}
		return tablet.Entry{Key: e.Key, Value: value}, true, nil
	}
}

func (t *transformStream) Close() { t.src.Close() }
