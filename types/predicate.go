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

package types

import "github.com/wiltonlazary/gaffer/x"

// PredicateKind enumerates the filter predicates understood by view
// filters and schema validators.
type PredicateKind byte

const (
	PredExists PredicateKind = iota + 1
	PredEq
	PredGt
	PredLt
	PredGe
	PredLe
	PredInRange
	PredInSet
)

var predNames = map[string]PredicateKind{
	"exists":  PredExists,
	"eq":      PredEq,
	"gt":      PredGt,
	"lt":      PredLt,
	"ge":      PredGe,
	"le":      PredLe,
	"inRange": PredInRange,
	"inSet":   PredInSet,
}

// PredicateFromString maps a JSON predicate name to its kind.
func PredicateFromString(name string) (PredicateKind, error) {
	k, ok := predNames[name]
	if !ok {
		return 0, x.Operationf("unknown predicate %q", name)
	}
	return k, nil
}

func (k PredicateKind) String() string {
	for name, kind := range predNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Predicate is a filter condition over the values selected by a filter
// clause. All predicates except exists evaluate against the first
// selected value.
type Predicate struct {
	Kind PredicateKind
	Args []Value
}

func (p Predicate) arity() int {
	switch p.Kind {
	case PredExists:
		return 0
	case PredInRange:
		return 2
	case PredInSet:
		return -1
	}
	return 1
}

// Validate checks the argument count for the predicate kind.
func (p Predicate) Validate() error {
	switch n := p.arity(); {
	case n < 0:
		if len(p.Args) == 0 {
			return x.Operationf("%s needs at least one argument", p.Kind)
		}
	case len(p.Args) != n:
		return x.Operationf("%s takes %d arguments, got %d", p.Kind, n, len(p.Args))
	}
	return nil
}

// Eval applies the predicate to the selected values. A missing selection
// is passed as a zero Value; only exists treats that as meaningful.
func (p Predicate) Eval(vals []Value) (bool, error) {
	if p.Kind == PredExists {
		for _, v := range vals {
			if v.Tid == 0 {
				return false, nil
			}
		}
		return true, nil
	}
	if len(vals) == 0 || vals[0].Tid == 0 {
		return false, nil
	}
	v := vals[0]
	switch p.Kind {
	case PredEq:
		return Equal(v, p.Args[0]), nil
	case PredGt, PredLt, PredGe, PredLe:
		c, err := Compare(v, p.Args[0])
		if err != nil {
			return false, err
		}
		switch p.Kind {
		case PredGt:
			return c > 0, nil
		case PredLt:
			return c < 0, nil
		case PredGe:
			return c >= 0, nil
		default:
			return c <= 0, nil
		}
	case PredInRange:
		lo, err := Compare(v, p.Args[0])
		if err != nil {
			return false, err
		}
		hi, err := Compare(v, p.Args[1])
		if err != nil {
			return false, err
		}
		return lo >= 0 && hi <= 0, nil
	case PredInSet:
		for _, a := range p.Args {
			if Equal(v, a) {
				return true, nil
			}
		}
		return false, nil
	}
	return false, x.Operationf("unknown predicate kind %d", p.Kind)
}

// Marshal appends the predicate's compact binary form.
func (p Predicate) Marshal(e *Encbuf) error {
	e.PutByte(byte(p.Kind))
	e.PutUvarint(uint64(len(p.Args)))
	for _, a := range p.Args {
		if err := e.PutValue(a); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalPredicate reads a predicate written by Marshal.
func UnmarshalPredicate(d *Decbuf) (Predicate, error) {
	p := Predicate{Kind: PredicateKind(d.Byte())}
	n := d.Uvarint()
	for i := uint64(0); i < n; i++ {
		p.Args = append(p.Args, d.Value())
	}
	if err := d.Err(); err != nil {
		return Predicate{}, err
	}
	return p, p.Validate()
}
