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

// Package housekeeping provides the housekeeping service. The housekeeping
// service periodically runs the registered tasks of the backend.
package housekeeping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/yorkie-team/revisiond/server/logging"
)

var (
	// ErrAlreadyStarted is returned when a task is registered after Start.
	ErrAlreadyStarted = errors.New("housekeeping already started")
)

// Task is a unit of periodic work. It is given a context that is cancelled
// when the service stops.
type Task func(ctx context.Context) error

type task struct {
	name string
	run  Task
}

// Housekeeping is the housekeeping service. It runs every registered task
// once per interval. A run starts after the previous one finished, so runs
// never overlap.
type Housekeeping struct {
	interval time.Duration

	mu      sync.Mutex
	tasks   []task
	started bool

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a new housekeeping instance.
func New(conf *Config) (*Housekeeping, error) {
	interval, err := conf.ParseInterval()
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())

	return &Housekeeping{
		interval: interval,

		ctx:        ctx,
		cancelFunc: cancelFunc,
	}, nil
}

// RegisterTask registers a task to run on every interval.
func (h *Housekeeping) RegisterTask(name string, run Task) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return fmt.Errorf("register %s: %w", name, ErrAlreadyStarted)
	}

	h.tasks = append(h.tasks, task{name: name, run: run})
	return nil
}

// Start starts the housekeeping service.
func (h *Housekeeping) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started {
		return ErrAlreadyStarted
	}
	h.started = true

	h.wg.Add(1)
	go h.run()
	return nil
}

// Stop stops the housekeeping service and waits for the running tasks to
// return.
func (h *Housekeeping) Stop() error {
	h.cancelFunc()
	h.wg.Wait()

	return nil
}

// RunOnce runs every registered task once. A failing task does not keep the
// others from running; the failures are returned joined.
func (h *Housekeeping) RunOnce(ctx context.Context) error {
	h.mu.Lock()
	tasks := append([]task(nil), h.tasks...)
	h.mu.Unlock()

	var errs []error
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		if err := t.run(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.name, err))
			continue
		}
		logging.From(ctx).Debugf("HSKP: %s done, %s", t.name, time.Since(start))
	}

	return errors.Join(errs...)
}

// run is the housekeeping loop.
func (h *Housekeeping) run() {
	defer h.wg.Done()

	for {
		ctx := logging.With(h.ctx, logging.New("hskp-"+xid.New().String()))
		if err := h.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.From(ctx).Error(err)
		}

		select {
		case <-time.After(h.interval):
		case <-h.ctx.Done():
			return
		}
	}
}
