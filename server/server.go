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


// Package server provides the revisiond server which is the main entry point
// of the revision history service. The server runs the periodic revision
// sweep and the profiling server.
package server

import (
	"context"
	gosync "sync"
	"time"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/server/backend"
	"github.com/yorkie-team/revisiond/server/backend/database"
	"github.com/yorkie-team/revisiond/server/profiling"
	"github.com/yorkie-team/revisiond/server/profiling/prometheus"
	"github.com/yorkie-team/revisiond/server/revisions"
)

// Revisiond is a server of revisiond. It saves the pending documents as
// revisions on every housekeeping run and rebuilds past revisions on demand.
type Revisiond struct {
	lock gosync.Mutex

	conf            *Config
	backend         *backend.Backend
	profilingServer *profiling.Server

	shutdown   bool
	shutdownCh chan struct{}
}

// New creates a new instance of Revisiond.
func New(conf *Config) (*Revisiond, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	metrics, err := prometheus.NewMetrics()
	if err != nil {
		return nil, err
	}

	be, err := backend.New(
		conf.Backend,
		conf.Mongo,
		conf.Housekeeping,
		metrics,
	)
	if err != nil {
		return nil, err
	}

	var profilingServer *profiling.Server
	if conf.Profiling != nil {
		profilingServer = profiling.NewServer(conf.Profiling, metrics)
	}

	return &Revisiond{
		conf:            conf,
		backend:         be,
		profilingServer: profilingServer,
		shutdownCh:      make(chan struct{}),
	}, nil
}

// Start starts the housekeeping service and the profiling server.
func (r *Revisiond) Start() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := r.RegisterHousekeepingTasks(r.backend); err != nil {
		return err
	}

	if err := r.backend.Start(); err != nil {
		return err
	}

	if r.profilingServer != nil {
		if err := r.profilingServer.Start(); err != nil {
			return err
		}
	}

	return nil
}

// Shutdown shuts down this revisiond server.
func (r *Revisiond) Shutdown(graceful bool) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.shutdown {
		return nil
	}

	if r.profilingServer != nil {
		r.profilingServer.Shutdown(graceful)
	}

	if err := r.backend.Shutdown(); err != nil {
		return err
	}

	close(r.shutdownCh)
	r.shutdown = true
	return nil
}

// ShutdownCh returns the shutdown channel.
func (r *Revisiond) ShutdownCh() <-chan struct{} {
	return r.shutdownCh
}

// RegisterHousekeepingTasks registers housekeeping tasks.
func (r *Revisiond) RegisterHousekeepingTasks(be *backend.Backend) error {
	maxSweeps := r.conf.Housekeeping.MaxSweepsPerRun

	return be.Housekeeping.RegisterTask("revision-sweep", func(ctx context.Context) error {
		return revisions.CheckAll(ctx, be, maxSweeps)
	})
}

// RunHousekeeping runs the registered housekeeping tasks once.
func (r *Revisiond) RunHousekeeping(ctx context.Context) error {
	return r.backend.Housekeeping.RunOnce(ctx)
}

// ListRevisions returns the revisions of the given document, newest first.
func (r *Revisiond) ListRevisions(ctx context.Context, docID types.ID) ([]*types.RevisionSummary, error) {
	return revisions.List(ctx, r.backend, docID)
}

// ReconstructAt returns the content of the given document at the revision
// created at or after the given time.
func (r *Revisiond) ReconstructAt(
	ctx context.Context,
	docID types.ID,
	at time.Time,
) (*types.RevisionContent, error) {
	return revisions.ReconstructAt(ctx, r.backend, docID, at)
}

// DB returns the database of the server. It is used for testing.
func (r *Revisiond) DB() database.Database {
	return r.backend.DB
}
