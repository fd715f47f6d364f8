/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/server"
	"github.com/yorkie-team/revisiond/server/backend/database/mongo"
)

// storeFlags are the flags of the commands that read revisions directly
// from the store.
type storeFlags struct {
	confPath              string
	mongoConnectionURI    string
	mongoRevisionDatabase string
	output                string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(
		&f.confPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVar(
		&f.mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	cmd.Flags().StringVar(
		&f.mongoRevisionDatabase,
		"mongo-database",
		server.DefaultMongoRevisionDatabase,
		"revisiond's database name in MongoDB",
	)
	cmd.Flags().StringVarP(
		&f.output,
		"output",
		"o",
		"",
		"One of 'yaml' or 'json'.",
	)
}

// open creates a server on the configured store without starting it.
func (f *storeFlags) open() (*server.Revisiond, error) {
	conf := server.NewConfig()
	if f.confPath != "" {
		parsed, err := server.NewConfigFromFile(f.confPath)
		if err != nil {
			return nil, err
		}
		conf = parsed
	} else if f.mongoConnectionURI != "" {
		conf.Mongo = &mongo.Config{
			ConnectionURI:     f.mongoConnectionURI,
			ConnectionTimeout: server.DefaultMongoConnectionTimeout.String(),
			RevisionDatabase:  f.mongoRevisionDatabase,
			PingTimeout:       server.DefaultMongoPingTimeout.String(),
		}
	}
	conf.Profiling = nil

	if conf.Mongo == nil {
		return nil, errors.New("a MongoDB connection is required: set --mongo-connection-uri or --config")
	}

	return server.New(conf)
}

func (f *storeFlags) validateOutput() error {
	switch f.output {
	case "", "yaml", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", f.output)
	}
}

// printStructured prints v in the requested output format. It returns false
// if the default human readable format was requested.
func (f *storeFlags) printStructured(cmd *cobra.Command, v interface{}) (bool, error) {
	switch f.output {
	case "yaml":
		marshalled, err := yaml.Marshal(v)
		if err != nil {
			return true, errors.New("failed to marshal YAML")
		}
		cmd.Print(string(marshalled))
		return true, nil
	case "json":
		marshalled, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, errors.New("failed to marshal JSON")
		}
		cmd.Println(string(marshalled))
		return true, nil
	}

	return false, nil
}

func parseDocID(arg string) (types.ID, error) {
	id := types.ID(arg)
	if err := id.Validate(); err != nil {
		return "", fmt.Errorf("document ID: %w", err)
	}
	return id, nil
}
