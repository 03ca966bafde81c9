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
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/x"
)

// ID identifies this layout in store properties.
const ID = "byteEntity"

func init() {
	keys.Register(ID, New)
}

type keyPackage struct {
	conv    *converter
	rf      *rangeFactory
	iters   keys.CoreIteratorFactory
	functor functor
}

// New returns an unconfigured byte-entity key package. SetSchema must
// run before use.
func New() keys.Package {
	conv := &converter{}
	return &keyPackage{
		conv:  conv,
		rf:    &rangeFactory{conv: conv},
		iters: keys.CoreIteratorFactory{PackageID: ID},
	}
}

func (p *keyPackage) ID() string { return ID }

func (p *keyPackage) SetSchema(s *schema.Schema) error {
	if s == nil {
		return x.Schemaf("nil schema")
	}
	p.conv.Schema = s
	return nil
}

func (p *keyPackage) Converter() keys.Converter          { return p.conv }
func (p *keyPackage) Ranges() keys.RangeFactory          { return p.rf }
func (p *keyPackage) Iterators() keys.IteratorFactory    { return p.iters }
func (p *keyPackage) Functor() keys.Functor              { return p.functor }
