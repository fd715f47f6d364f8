/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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


package backend

import (
	"fmt"
	"os"
	"time"
)

// Config is the configuration for creating a Backend instance.
type Config struct {
	// WorkerPath is the path of the executable started as the patch worker.
	// The worker is run with WorkerArgs and talks over its stdin and stdout.
	// If empty, the worker runs inside this process.
	WorkerPath string `yaml:"WorkerPath"`

	// WorkerArgs are the arguments passed to the worker executable.
	WorkerArgs []string `yaml:"WorkerArgs"`

	// WorkerRequestTimeout is the time a caller waits for a worker reply.
	WorkerRequestTimeout string `yaml:"WorkerRequestTimeout"`

	// IdleThreshold is how long a document must be left unchanged before its
	// pending changes are saved as a revision.
	IdleThreshold string `yaml:"IdleThreshold"`

	// MaxSaveInterval is how long a document may keep changing without a
	// revision being saved.
	MaxSaveInterval string `yaml:"MaxSaveInterval"`

	// RevisionCacheSize is the number of reconstructed revisions to keep.
	RevisionCacheSize int `yaml:"RevisionCacheSize"`

	// Hostname is the hostname of this server. It is used by metrics.
	Hostname string `yaml:"Hostname"`
}

// Validate validates this config.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.WorkerRequestTimeout); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--worker-request-timeout" flag: %w`,
			c.WorkerRequestTimeout,
			err,
		)
	}

	if _, err := time.ParseDuration(c.IdleThreshold); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--idle-threshold" flag: %w`,
			c.IdleThreshold,
			err,
		)
	}

	if _, err := time.ParseDuration(c.MaxSaveInterval); err != nil {
		return fmt.Errorf(
			`invalid argument "%s" for "--max-save-interval" flag: %w`,
			c.MaxSaveInterval,
			err,
		)
	}

	if c.RevisionCacheSize <= 0 {
		return fmt.Errorf(
			`invalid argument "%d" for "--revision-cache-size" flag: must be positive`,
			c.RevisionCacheSize,
		)
	}

	return nil
}

// ParseWorkerRequestTimeout returns the worker request timeout.
func (c *Config) ParseWorkerRequestTimeout() time.Duration {
	result, err := time.ParseDuration(c.WorkerRequestTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse worker request timeout: %v\n", err)
		os.Exit(1)
	}

	return result
}

// ParseIdleThreshold returns the idle threshold.
func (c *Config) ParseIdleThreshold() time.Duration {
	result, err := time.ParseDuration(c.IdleThreshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse idle threshold: %v\n", err)
		os.Exit(1)
	}

	return result
}

// ParseMaxSaveInterval returns the max save interval.
func (c *Config) ParseMaxSaveInterval() time.Duration {
	result, err := time.ParseDuration(c.MaxSaveInterval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse max save interval: %v\n", err)
		os.Exit(1)
	}

	return result
}
