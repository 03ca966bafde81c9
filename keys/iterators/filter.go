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
	"github.com/wiltonlazary/gaffer/view"
)

// newFilterStage builds a filter iterator for one stage of the view:
// pre-aggregation, post-aggregation or post-transformation. Groups the
// view excludes are dropped here as well; the retriever enforces that
// again on the client.
func newFilterStage(stage func(*view.GroupView) []view.Filter) tablet.IteratorBuilder {
	return func(opts map[string]string, src tablet.EntryStream) (tablet.EntryStream, error) {
		env, err := newStageEnv(opts, true)
		if err != nil {
			return nil, err
		}
		return &filterStream{src: src, keep: func(e tablet.Entry) (bool, error) {
			gv := env.view.Group(string(e.Key.ColFamily))
			if gv == nil {
				return false, nil
			}
			filters := stage(gv)
			if len(filters) == 0 {
				return true, nil
			}
			el, _, err := env.decode(e)
			if err != nil {
				return false, err
			}
			return view.TestAll(filters, el.Props())
		}}, nil
	}
}
