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

// Package store ties the pieces together: it owns the key package, the
// lazy tablet connector, and one handler per operation kind. Every
// edge a client writes lands in the table twice, once keyed by each
// endpoint, which is what lets a single range scan answer adjacency
// queries.
package store

import (
	"context"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/wiltonlazary/gaffer/keys"
	"github.com/wiltonlazary/gaffer/operation"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/x"
)

// User identifies the caller and carries their visibility
// authorisations.
type User struct {
	Name  string
	Auths tablet.Authorisations
}

// Opener creates the tablet connector from store properties. The
// embedded engine and a remote client both fit.
type Opener func(props tablet.Properties) (tablet.Connector, error)

// Store is one graph over one tablet table.
type Store struct {
	schema *schema.Schema
	props  tablet.Properties
	open   Opener
	kp     keys.Package

	mu   sync.Mutex
	conn tablet.Connector
}

var storeTraits = tablet.Traits{
	tablet.TraitOrdered:                     true,
	tablet.TraitAggregation:                 true,
	tablet.TraitStoreValidation:             true,
	tablet.TraitPreAggregationFiltering:     true,
	tablet.TraitPostAggregationFiltering:    true,
	tablet.TraitPostTransformationFiltering: true,
	tablet.TraitTransformation:              true,
	tablet.TraitVisibility:                  true,
}

// New initialises a store: validates the schema, resolves the key
// package from the registry, and ensures the table exists. All errors
// here are fatal to startup.
func New(s *schema.Schema, props tablet.Properties, open Opener) (*Store, error) {
	if err := props.Validate(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	kp, err := keys.Get(props.KeyPackage)
	if err != nil {
		return nil, err
	}
	if err := kp.SetSchema(s); err != nil {
		return nil, err
	}
	st := &Store{schema: s, props: props, open: open, kp: kp}
	conn, err := st.connection()
	if err != nil {
		return nil, err
	}
	cfg := tablet.TableConfig{BloomFunctorClass: kp.Functor().Name()}
	if err := conn.EnsureTable(props.Table, cfg); err != nil {
		return nil, x.Storef("ensure table %q: %v", props.Table, err)
	}
	return st, nil
}

// connection returns the shared connector, opening it on first use.
func (s *Store) connection() (tablet.Connector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		conn, err := s.open(s.props)
		if err != nil {
			return nil, err
		}
		s.conn = conn
	}
	return s.conn, nil
}

// Schema returns the immutable schema.
func (s *Store) Schema() *schema.Schema { return s.schema }

// KeyPackage returns the configured layout bundle.
func (s *Store) KeyPackage() keys.Package { return s.kp }

// Traits advertises the capabilities the handlers may rely on.
func (s *Store) Traits() tablet.Traits { return storeTraits }

// Close releases the connector.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Execute dispatches a declarative operation to its handler. The kinds
// form a closed set; anything else is an operation error.
func (s *Store) Execute(ctx context.Context, u User, op interface{}) (interface{}, error) {
	jobID := uuid.New()
	glog.V(2).Infof("job %s: executing %T for user %q", jobID, op, u.Name)
	switch o := op.(type) {
	case operation.GetElements:
		return s.GetElements(ctx, u, o)
	case operation.GetAllElements:
		return s.GetAllElements(ctx, u, o)
	case operation.GetAdjacentEntitySeeds:
		return s.GetAdjacentEntitySeeds(ctx, u, o)
	case operation.GetElementsWithinSet:
		return s.GetElementsWithinSet(ctx, u, o)
	case operation.GetElementsBetweenSets:
		return s.GetElementsBetweenSets(ctx, u, o)
	case operation.GetElementsInRanges:
		return s.GetElementsInRanges(ctx, u, o)
	case operation.SummariseGroupOverRanges:
		return s.SummariseGroupOverRanges(ctx, u, o)
	case operation.AddElements:
		return s.AddElements(ctx, o)
	default:
		return nil, x.Operationf("unsupported operation %T", op)
	}
}
