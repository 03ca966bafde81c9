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

package x

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NumElementsWritten counts elements successfully converted and
	// handed to the batch writer.
	NumElementsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gaffer_elements_written_total",
		Help: "Elements converted and submitted to the tablet engine.",
	})

	// NumElementsSkipped counts elements dropped on codec failure.
	NumElementsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gaffer_elements_skipped_total",
		Help: "Elements skipped because key or value conversion failed.",
	})

	// NumElementsRetrieved counts elements decoded from scans.
	NumElementsRetrieved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gaffer_elements_retrieved_total",
		Help: "Elements returned to callers from retrievers.",
	})

	// NumEntriesAggregated counts entries merged by the aggregation
	// iterator in the embedded tablet engine.
	NumEntriesAggregated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gaffer_entries_aggregated_total",
		Help: "Tablet entries collapsed into an existing aggregation key.",
	})
)
