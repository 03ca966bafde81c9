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

import (
	"github.com/spf13/cast"

	"github.com/wiltonlazary/gaffer/x"
)

// FromInterface coerces a JSON-decoded value into a typed Value. The
// target type comes from the schema, so JSON numbers land on the
// declared int or float type rather than on float64.
func FromInterface(tid TypeID, raw interface{}) (Value, error) {
	switch tid {
	case StringID:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return Value{}, x.Operationf("not a string: %v", raw)
		}
		return String(s), nil
	case IntID:
		v, err := cast.ToInt64E(raw)
		if err != nil {
			return Value{}, x.Operationf("not an int: %v", raw)
		}
		return Int(v), nil
	case FloatID:
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return Value{}, x.Operationf("not a float: %v", raw)
		}
		return Float(v), nil
	case BoolID:
		v, err := cast.ToBoolE(raw)
		if err != nil {
			return Value{}, x.Operationf("not a bool: %v", raw)
		}
		return Bool(v), nil
	case BytesID:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return Value{}, x.Operationf("not a byte string: %v", raw)
		}
		return Raw([]byte(s)), nil
	}
	return Value{}, x.Operationf("cannot coerce into type %d", tid)
}
