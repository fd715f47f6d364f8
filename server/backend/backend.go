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


// Package backend provides the backend implementation of revisiond. This
// package is responsible for managing the database, the patch worker and the
// other resources required to save and reconstruct revisions.
package backend

import (
	"errors"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/moby/locker"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/pkg/clock"
	"github.com/yorkie-team/revisiond/server/backend/background"
	"github.com/yorkie-team/revisiond/server/backend/database"
	memdb "github.com/yorkie-team/revisiond/server/backend/database/memory"
	"github.com/yorkie-team/revisiond/server/backend/database/mongo"
	"github.com/yorkie-team/revisiond/server/backend/housekeeping"
	"github.com/yorkie-team/revisiond/server/backend/worker"
	"github.com/yorkie-team/revisiond/server/logging"
	"github.com/yorkie-team/revisiond/server/profiling/prometheus"
)

// Backend manages revisiond's backend such as Database and the patch worker.
// It also provides the revision cache and the per-document locker.
type Backend struct {
	Config *Config

	// DB is the database instance.
	DB database.Database
	// Worker is the channel to the patch worker.
	Worker *worker.Channel
	// Locker serializes the saves of a document.
	Locker *locker.Locker
	// RevisionCache keeps reconstructed revisions by revision ID.
	RevisionCache *lru.Cache[types.ID, *types.RevisionContent]
	// Clock is the source of the current time.
	Clock clock.Clock

	// Background is used to manage background tasks.
	Background *background.Background
	// Housekeeping is used to manage background batch tasks.
	Housekeeping *housekeeping.Housekeeping

	// Metrics is used to expose metrics.
	Metrics *prometheus.Metrics
}

// New creates a new instance of Backend.
func New(
	conf *Config,
	mongoConf *mongo.Config,
	housekeepingConf *housekeeping.Config,
	metrics *prometheus.Metrics,
) (*Backend, error) {
	// 01. Fill the hostname with the hostname of the current machine.
	if conf.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("os.Hostname: %w", err)
		}
		conf.Hostname = hostname
	}

	// 02. Create the revision cache and the background task manager.
	revisionCache, err := lru.New[types.ID, *types.RevisionContent](conf.RevisionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create revision cache: %w", err)
	}
	bg := background.New(metrics)

	// 03. Create the worker channel. Without a worker binary the worker
	// runs on a goroutine of this process.
	var spawner worker.Spawner = &worker.InProcessSpawner{}
	if conf.WorkerPath != "" {
		spawner = &worker.ExecSpawner{
			Path: conf.WorkerPath,
			Args: conf.WorkerArgs,
		}
	}
	workerChannel := worker.NewChannel(spawner, metrics)

	// 04. Create the database instance. If the MongoDB configuration is given,
	// create a MongoDB instance. Otherwise, create a memory database instance.
	var db database.Database
	if mongoConf != nil {
		db, err = mongo.Dial(mongoConf)
		if err != nil {
			return nil, err
		}
	} else {
		db, err = memdb.New()
		if err != nil {
			return nil, err
		}
	}

	// 05. Create the housekeeping instance.
	housekeeper, err := housekeeping.New(housekeepingConf)
	if err != nil {
		return nil, err
	}

	dbInfo := "memory"
	if mongoConf != nil {
		dbInfo = mongoConf.ConnectionURI
	}
	workerInfo := "in-process"
	if conf.WorkerPath != "" {
		workerInfo = conf.WorkerPath
	}
	logging.DefaultLogger().Infof("backend created: db: %s, worker: %s", dbInfo, workerInfo)

	return &Backend{
		Config: conf,

		DB:            db,
		Worker:        workerChannel,
		Locker:        locker.New(),
		RevisionCache: revisionCache,
		Clock:         clock.Real{},

		Background:   bg,
		Housekeeping: housekeeper,

		Metrics: metrics,
	}, nil
}

// Start starts the backend.
func (b *Backend) Start() error {
	if err := b.Housekeeping.Start(); err != nil {
		return err
	}

	logging.DefaultLogger().Infof("backend started")
	return nil
}

// Shutdown closes all resources of this instance.
func (b *Backend) Shutdown() error {
	var errs []error

	if err := b.Housekeeping.Stop(); err != nil {
		errs = append(errs, err)
	}

	b.Background.Close()

	if err := b.Worker.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	logging.DefaultLogger().Infof("backend stopped")
	return nil
}
