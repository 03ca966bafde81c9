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
	"log"

	"github.com/pkg/errors"
)

// Error kinds. Every error produced by this module wraps exactly one of
// these sentinels, so callers classify with errors.Is rather than string
// matching.
var (
	// ErrConfig covers unknown key packages and missing credentials.
	// Fatal at initialisation.
	ErrConfig = errors.New("config error")

	// ErrSchema covers invalid or inconsistent schemas. Fatal at
	// initialisation.
	ErrSchema = errors.New("schema error")

	// ErrCodec marks a single element that failed to encode or decode.
	// Writers log and skip; the batch continues.
	ErrCodec = errors.New("codec error")

	// ErrStore covers tablet-engine connectivity and auth failures.
	ErrStore = errors.New("store error")

	// ErrOperation covers unsupported operations, type-mismatched chains
	// and invalid views. Raised before any scan begins.
	ErrOperation = errors.New("operation error")

	// ErrIteratorConfig marks a failure to serialise schema or view into
	// an iterator's configuration.
	ErrIteratorConfig = errors.New("iterator config error")
)

// Codecf returns a new per-element codec error.
func Codecf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrCodec, format, args...)
}

// Schemaf returns a new schema error.
func Schemaf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSchema, format, args...)
}

// Configf returns a new configuration error.
func Configf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfig, format, args...)
}

// Storef returns a new store error.
func Storef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrStore, format, args...)
}

// Operationf returns a new operation error.
func Operationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrOperation, format, args...)
}

// IteratorConfigf returns a new iterator configuration error.
func IteratorConfigf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrIteratorConfig, format, args...)
}

// Check logs fatal if err != nil.
func Check(err error) {
	if err != nil {
		log.Fatalf("%+v", errors.Wrap(err, ""))
	}
}

// Checkf is Check with extra info.
func Checkf(err error, format string, args ...interface{}) {
	if err != nil {
		log.Fatalf("%+v", errors.Wrapf(err, format, args...))
	}
}

// AssertTrue asserts that b is true. Otherwise, it would log fatal.
func AssertTrue(b bool) {
	if !b {
		log.Fatalf("%+v", errors.Errorf("Assert failed"))
	}
}

// AssertTruef is AssertTrue with extra info.
func AssertTruef(b bool, format string, args ...interface{}) {
	if !b {
		log.Fatalf("%+v", errors.Errorf(format, args...))
	}
}
