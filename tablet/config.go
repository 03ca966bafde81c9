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

import (
	"github.com/spf13/viper"

	"github.com/wiltonlazary/gaffer/x"
)

// Recognised store property keys.
const (
	PropInstance   = "accumulo.instance"
	PropZookeepers = "accumulo.zookeepers"
	PropUser       = "accumulo.user"
	PropPassword   = "accumulo.password"
	PropTable      = "accumulo.table"
	PropKeyPackage = "gaffer.store.keypackage.class"
)

// DefaultKeyPackage is the layout used when none is configured.
const DefaultKeyPackage = "byteEntity"

// Properties holds the store configuration.
type Properties struct {
	Instance   string
	Zookeepers string
	User       string
	Password   string
	Table      string
	KeyPackage string
}

// PropertiesFromViper reads store properties from a viper instance
// (flags, env, or config file). Missing credentials or table are fatal.
func PropertiesFromViper(v *viper.Viper) (Properties, error) {
	v.SetDefault(PropKeyPackage, DefaultKeyPackage)
	p := Properties{
		Instance:   v.GetString(PropInstance),
		Zookeepers: v.GetString(PropZookeepers),
		User:       v.GetString(PropUser),
		Password:   v.GetString(PropPassword),
		Table:      v.GetString(PropTable),
		KeyPackage: v.GetString(PropKeyPackage),
	}
	return p, p.Validate()
}

// Validate checks the required properties.
func (p Properties) Validate() error {
	if p.Table == "" {
		return x.Configf("property %q is required", PropTable)
	}
	if p.User == "" {
		return x.Configf("property %q is required", PropUser)
	}
	if p.KeyPackage == "" {
		return x.Configf("property %q is empty", PropKeyPackage)
	}
	return nil
}
