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

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wiltonlazary/gaffer/element"
	"github.com/wiltonlazary/gaffer/operation"
	"github.com/wiltonlazary/gaffer/schema"
	"github.com/wiltonlazary/gaffer/store"
	"github.com/wiltonlazary/gaffer/tablet"
	"github.com/wiltonlazary/gaffer/tablet/embedded"
	"github.com/wiltonlazary/gaffer/types"
	"github.com/wiltonlazary/gaffer/x"
)

func openStore() (*store.Store, error) {
	data, err := os.ReadFile(conf.GetString("schema"))
	if err != nil {
		return nil, x.Configf("read schema: %v", err)
	}
	s, err := schema.Parse(data)
	if err != nil {
		return nil, err
	}
	props, err := tablet.PropertiesFromViper(conf)
	if err != nil {
		return nil, err
	}
	dir := conf.GetString("dir")
	return store.New(s, props, func(tablet.Properties) (tablet.Connector, error) {
		return embedded.Open(dir)
	})
}

func currentUser() store.User {
	return store.User{
		Name:  conf.GetString(tablet.PropUser),
		Auths: tablet.Authorisations(conf.GetStringSlice("auths")),
	}
}

var loadCmd = &cobra.Command{
	Use:   "load <elements.json>",
	Short: "Add elements from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		elems, err := readElements(st.Schema(), args[0])
		if err != nil {
			return err
		}
		sum, err := st.AddElements(cmd.Context(), operation.AddElements{
			Elements: element.NewSliceStream(elems...),
		})
		if err != nil {
			return err
		}
		fmt.Printf("written %d, skipped %d\n", sum.Written, sum.Skipped)
		if sum.FirstErr != nil {
			fmt.Printf("first error: %v\n", sum.FirstErr)
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <operation.json>",
	Short: "Run a query operation from its JSON form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return x.Operationf("read operation: %v", err)
		}
		op, err := operation.Parse(st.Schema(), data)
		if err != nil {
			return err
		}
		out, err := st.Execute(cmd.Context(), currentUser(), op)
		if err != nil {
			return err
		}
		switch res := out.(type) {
		case element.Stream:
			defer res.Close()
			for res.Next() {
				fmt.Println(res.Element())
			}
			return res.Err()
		case *store.SeedStream:
			defer res.Close()
			for res.Next() {
				fmt.Printf("%v\n", res.Seed().Vertex)
			}
			return res.Err()
		default:
			return x.Operationf("unexpected result %T", out)
		}
	},
}

// jsonElement is one line of a load file.
type jsonElement struct {
	Group       string                 `json:"group"`
	Vertex      interface{}            `json:"vertex"`
	Source      interface{}            `json:"source"`
	Destination interface{}            `json:"destination"`
	Directed    *bool                  `json:"directed"`
	Properties  map[string]interface{} `json:"properties"`
}

func readElements(s *schema.Schema, path string) ([]element.Element, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, x.Operationf("read elements: %v", err)
	}
	var raw []jsonElement
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, x.Operationf("bad elements json: %v", err)
	}
	out := make([]element.Element, 0, len(raw))
	for _, je := range raw {
		el, err := parseElement(s, je)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func parseElement(s *schema.Schema, je jsonElement) (element.Element, error) {
	g, ok := s.Group(je.Group)
	if !ok {
		return nil, x.Operationf("unknown group %q", je.Group)
	}
	props := make(element.Properties, len(je.Properties))
	for name, raw := range je.Properties {
		p, ok := g.Property(name)
		if !ok {
			return nil, x.Operationf("group %q has no property %q", g.Name, name)
		}
		v, err := types.FromInterface(p.Type, raw)
		if err != nil {
			return nil, err
		}
		props[name] = v
	}
	if g.IsEdge {
		src, err := types.FromInterface(g.SourceType, je.Source)
		if err != nil {
			return nil, err
		}
		dst, err := types.FromInterface(g.DestinationType, je.Destination)
		if err != nil {
			return nil, err
		}
		directed := true
		if je.Directed != nil {
			directed = *je.Directed
		}
		return &element.Edge{Group: g.Name, Source: src, Destination: dst,
			Directed: directed, Properties: props}, nil
	}
	vertex, err := types.FromInterface(g.VertexType, je.Vertex)
	if err != nil {
		return nil, err
	}
	return &element.Entity{Group: g.Name, Vertex: vertex, Properties: props}, nil
}
