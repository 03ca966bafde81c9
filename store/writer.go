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

package store

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"

	"github.com/wiltonlazary/gaffer/operation"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/x"
)

// AddElements converts the stream into mutations and feeds the batch
// writer: one mutation for an entity, two for an edge. An element the
// codec rejects is logged and skipped so one malformed element cannot
// poison a bulk load; the summary carries the counts either way.
func (s *Store) AddElements(ctx context.Context,
	op operation.AddElements) (operation.AddSummary, error) {
	var sum operation.AddSummary
	conn, err := s.connection()
	if err != nil {
		return sum, err
	}
	writer, err := conn.NewBatchWriter(s.props.Table)
	if err != nil {
		return sum, err
	}
	conv := s.kp.Converter()

	skip := func(err error, what string) {
		glog.Errorf("skipping element (%s): %v", what, err)
		x.NumElementsSkipped.Inc()
		sum.Skipped++
		if sum.FirstErr == nil {
			sum.FirstErr = err
		}
	}

	elems := op.Elements
	defer elems.Close()
	for elems.Next() {
		if err := ctx.Err(); err != nil {
			break
		}
		el := elems.Element()
		first, second, err := conv.KeysFromElement(el)
		if err != nil {
			skip(err, "key conversion")
			continue
		}
		value, err := conv.ValueFromElement(el)
		if err != nil {
			skip(err, "value conversion")
			continue
		}
		if err := writer.Add(tablet.Mutation{Key: first, Value: value}); err != nil {
			skip(err, "mutation rejected")
			continue
		}
		// Edges co-own their two key forms; a missing partner is a
		// recoverable inconsistency, not a valid state.
		if second != nil {
			if err := writer.Add(tablet.Mutation{Key: *second, Value: value}); err != nil {
				skip(err, "partner mutation rejected")
				continue
			}
		}
		x.NumElementsWritten.Inc()
		sum.Written++
	}

	if err := writer.Close(); err != nil {
		glog.Warningf("batch writer close: %v", err)
		if sum.FirstErr == nil {
			sum.FirstErr = err
		}
	}
	if err := elems.Err(); err != nil {
		return sum, err
	}
	glog.V(1).Infof("added %s elements to %q (%d skipped)",
		humanize.Comma(int64(sum.Written)), s.props.Table, sum.Skipped)
	return sum, nil
}
