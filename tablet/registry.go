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

import "github.com/wiltonlazary/gaffer/x"

// IteratorBuilder constructs one server-side iterator stage from its
// setting options, wrapping the source stream.
type IteratorBuilder func(opts map[string]string, src EntryStream) (EntryStream, error)

var iterators = make(map[string]IteratorBuilder)

// RegisterIterator installs an iterator class. Implementations register
// themselves from init; duplicate classes are a programming error.
func RegisterIterator(class string, b IteratorBuilder) {
	if _, ok := iterators[class]; ok {
		x.AssertTruef(false, "duplicate iterator class %q", class)
	}
	iterators[class] = b
}

// GetIterator looks up a registered iterator class.
func GetIterator(class string) (IteratorBuilder, error) {
	b, ok := iterators[class]
	if !ok {
		return nil, x.IteratorConfigf("unknown iterator class %q", class)
	}
	return b, nil
}
