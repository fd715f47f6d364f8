/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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


package server

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/revisiond/server/backend"
	"github.com/yorkie-team/revisiond/server/backend/database/mongo"
	"github.com/yorkie-team/revisiond/server/backend/housekeeping"
	"github.com/yorkie-team/revisiond/server/profiling"
)

// Below are the values of the default values of revisiond config.
const (
	DefaultProfilingPort = 8081

	DefaultHousekeepingInterval        = 30 * time.Second
	DefaultHousekeepingMaxSweepsPerRun = 10

	DefaultMongoConnectionURI                = "mongodb://localhost:27017"
	DefaultMongoConnectionTimeout            = 5 * time.Second
	DefaultMongoPingTimeout                  = 5 * time.Second
	DefaultMongoRevisionDatabase             = "revisiond"
	DefaultMongoMonitoringSlowQueryThreshold = 100 * time.Millisecond

	DefaultWorkerRequestTimeout = 30 * time.Second
	DefaultIdleThreshold        = 5 * time.Minute
	DefaultMaxSaveInterval      = 10 * time.Minute
	DefaultRevisionCacheSize    = 1000

	DefaultHostname = ""
)

// Config is the configuration for creating a revisiond server.
type Config struct {
	Profiling    *profiling.Config    `yaml:"Profiling"`
	Housekeeping *housekeeping.Config `yaml:"Housekeeping"`
	Backend      *backend.Config      `yaml:"Backend"`
	Mongo        *mongo.Config        `yaml:"Mongo"`
}

// NewConfig returns a Config struct that contains reasonable defaults
// for most of the configurations.
func NewConfig() *Config {
	return newConfig(DefaultProfilingPort)
}

// NewConfigFromFile returns a Config struct for the given conf file.
func NewConfigFromFile(path string) (*Config, error) {
	conf := &Config{}
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err = yaml.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("unmarshal config file: %w", err)
	}

	conf.ensureDefaultValue()
	return conf, nil
}

// Validate returns an error if the provided Config is invalidated.
func (c *Config) Validate() error {
	if c.Profiling != nil {
		if err := c.Profiling.Validate(); err != nil {
			return err
		}
	}

	if err := c.Housekeeping.Validate(); err != nil {
		return err
	}

	if err := c.Backend.Validate(); err != nil {
		return err
	}

	if c.Mongo != nil {
		if err := c.Mongo.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ensureDefaultValue sets the value of the option to which the default value
// should be applied when the user does not input it.
func (c *Config) ensureDefaultValue() {
	if c.Profiling == nil {
		c.Profiling = &profiling.Config{}
	}
	if c.Profiling.Port == 0 {
		c.Profiling.Port = DefaultProfilingPort
	}

	if c.Housekeeping == nil {
		c.Housekeeping = &housekeeping.Config{}
	}
	if c.Housekeeping.Interval == "" {
		c.Housekeeping.Interval = DefaultHousekeepingInterval.String()
	}
	if c.Housekeeping.MaxSweepsPerRun == 0 {
		c.Housekeeping.MaxSweepsPerRun = DefaultHousekeepingMaxSweepsPerRun
	}

	if c.Backend == nil {
		c.Backend = &backend.Config{}
	}
	if c.Backend.WorkerRequestTimeout == "" {
		c.Backend.WorkerRequestTimeout = DefaultWorkerRequestTimeout.String()
	}
	if c.Backend.IdleThreshold == "" {
		c.Backend.IdleThreshold = DefaultIdleThreshold.String()
	}
	if c.Backend.MaxSaveInterval == "" {
		c.Backend.MaxSaveInterval = DefaultMaxSaveInterval.String()
	}
	if c.Backend.RevisionCacheSize == 0 {
		c.Backend.RevisionCacheSize = DefaultRevisionCacheSize
	}

	if c.Mongo != nil {
		if c.Mongo.ConnectionURI == "" {
			c.Mongo.ConnectionURI = DefaultMongoConnectionURI
		}

		if c.Mongo.ConnectionTimeout == "" {
			c.Mongo.ConnectionTimeout = DefaultMongoConnectionTimeout.String()
		}

		if c.Mongo.RevisionDatabase == "" {
			c.Mongo.RevisionDatabase = DefaultMongoRevisionDatabase
		}

		if c.Mongo.PingTimeout == "" {
			c.Mongo.PingTimeout = DefaultMongoPingTimeout.String()
		}

		if c.Mongo.MonitoringEnabled {
			if c.Mongo.MonitoringSlowQueryThreshold == "" {
				c.Mongo.MonitoringSlowQueryThreshold = DefaultMongoMonitoringSlowQueryThreshold.String()
			}
		}
	}
}

func newConfig(profilingPort int) *Config {
	return &Config{
		Profiling: &profiling.Config{
			Port: profilingPort,
		},
		Housekeeping: &housekeeping.Config{
			Interval:        DefaultHousekeepingInterval.String(),
			MaxSweepsPerRun: DefaultHousekeepingMaxSweepsPerRun,
		},
		Backend: &backend.Config{
			WorkerRequestTimeout: DefaultWorkerRequestTimeout.String(),
			IdleThreshold:        DefaultIdleThreshold.String(),
			MaxSaveInterval:      DefaultMaxSaveInterval.String(),
			RevisionCacheSize:    DefaultRevisionCacheSize,
			Hostname:             DefaultHostname,
		},
	}
}
