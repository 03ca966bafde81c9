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

// Command gaffer is a small driver over the embedded tablet engine:
// load elements from JSON, run operations against the graph.
package main

import (
	goflag "flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wiltonlazary/gaffer/tablet"

	// Register the layouts and the server-side iterators.
	_ "github.com/wiltonlazary/gaffer/keys/byteentity"
	_ "github.com/wiltonlazary/gaffer/keys/classic"
	_ "github.com/wiltonlazary/gaffer/keys/iterators"
)

var rootCmd = &cobra.Command{
	Use:   "gaffer",
	Short: "Gaffer: property graphs on an ordered tablet store",
	Long: `
Gaffer stores a property graph on an ordered key-value store and
answers seed queries with single range scans. This driver runs the
embedded engine; point it at a data directory and a schema.
`,
}

var conf = viper.New()

func init() {
	rootCmd.PersistentFlags().String("dir", "",
		"Data directory for the embedded engine; empty runs in memory")
	rootCmd.PersistentFlags().String("schema", "",
		"Path to the JSON schema file")
	rootCmd.PersistentFlags().String(tablet.PropTable, "graph",
		"Target table name")
	rootCmd.PersistentFlags().String(tablet.PropUser, "root",
		"User name for the tablet engine")
	rootCmd.PersistentFlags().String(tablet.PropPassword, "",
		"Password token for the tablet engine")
	rootCmd.PersistentFlags().String(tablet.PropKeyPackage, tablet.DefaultKeyPackage,
		"On-disk layout variant")
	rootCmd.PersistentFlags().StringSlice("auths", nil,
		"Visibility authorisations for scans")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(getCmd)

	if err := conf.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

func main() {
	goflag.Parse()
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
