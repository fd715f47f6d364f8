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

package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/yorkie-team/revisiond/pkg/history"
	"github.com/yorkie-team/revisiond/server/logging"
	"github.com/yorkie-team/revisiond/server/profiling/prometheus"
)

// Channel sends requests to a worker process and resolves each of them with
// the response that carries its key. The process is spawned on the first
// request and again on the first request after it exits.
type Channel struct {
	spawner Spawner
	logger  logging.Logger
	metrics *prometheus.Metrics

	mu      sync.Mutex
	process *process
	pending map[string]*Future
	closed  bool
}

type process struct {
	Process

	// writeMu keeps concurrent requests from interleaving their lines.
	writeMu sync.Mutex
}

// NewChannel creates a new channel. No process is spawned until the first
// request.
func NewChannel(spawner Spawner, metrics *prometheus.Metrics) *Channel {
	return &Channel{
		spawner: spawner,
		logger:  logging.New("worker"),
		metrics: metrics,
		pending: make(map[string]*Future),
	}
}

// Future is the eventual response of a submitted request.
type Future struct {
	key         string
	kind        RequestKind
	processID   string
	submittedAt time.Time

	once   sync.Once
	done   chan struct{}
	result json.RawMessage
	err    error

	channel *Channel
}

// Key returns the correlation key of the request.
func (f *Future) Key() string {
	return f.key
}

// Wait blocks until the response arrives or ctx is done. A request whose
// wait is abandoned is forgotten; a late response to it is reported as an
// unknown key.
func (f *Future) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		f.channel.forget(f.key)
		return nil, fmt.Errorf("wait %s %s: %w", f.kind, f.key, ctx.Err())
	}
}

func (f *Future) resolve(result json.RawMessage, err error) {
	f.once.Do(func() {
		f.result = result
		f.err = err
		close(f.done)
	})
}

// Submit sends the request to the worker. The key of the request is
// assigned here.
func (c *Channel) Submit(ctx context.Context, req *Request) (*Future, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrChannelClosed
	}

	p, err := c.ensureProcess(ctx)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	req.Key = newKey()
	future := &Future{
		key:         req.Key,
		kind:        req.Kind,
		processID:   p.ID(),
		submittedAt: time.Now(),
		done:        make(chan struct{}),
		channel:     c,
	}
	c.pending[req.Key] = future
	c.metrics.SetWorkerPendingRequests(len(c.pending))
	c.mu.Unlock()

	if err := p.send(req); err != nil {
		c.forget(req.Key)
		return nil, fmt.Errorf("send %s to worker %s: %v: %w", req.Kind, p.ID(), err, ErrWorkerExited)
	}

	return future, nil
}

// CreatePatch returns the serialized patch that turns source into target.
// The empty string means the texts are equal.
func (c *Channel) CreatePatch(ctx context.Context, source, target string) (string, error) {
	future, err := c.Submit(ctx, &Request{
		Kind:       CreatePatch,
		SourceText: &source,
		TargetText: &target,
	})
	if err != nil {
		return "", err
	}

	result, err := future.Wait(ctx)
	if err != nil {
		return "", err
	}

	var text string
	if err := json.Unmarshal(result, &text); err != nil {
		return "", fmt.Errorf("decode patch: %v: %w", err, ErrMalformedMessage)
	}

	return text, nil
}

// GetRevisionAt returns the content of revisions[count-1], where revisions
// are ordered newest first.
func (c *Channel) GetRevisionAt(
	ctx context.Context,
	revisions []history.Revision,
	count int,
) (*history.Snapshot, error) {
	future, err := c.Submit(ctx, &Request{
		Kind:      GetRevisionAt,
		Revisions: revisions,
		Count:     &count,
	})
	if err != nil {
		return nil, err
	}

	result, err := future.Wait(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &history.Snapshot{}
	if err := json.Unmarshal(result, snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %v: %w", err, ErrMalformedMessage)
	}

	return snapshot, nil
}

// Pending returns the number of requests waiting for a response.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// Close kills the worker and rejects every pending request.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	p := c.process
	c.process = nil
	c.rejectLocked("", ErrChannelClosed)
	c.mu.Unlock()

	if p == nil {
		return nil
	}

	if err := p.Kill(); err != nil {
		return fmt.Errorf("close worker channel: %w", err)
	}
	return nil
}

// ensureProcess returns the live process, spawning one if there is none.
// It must be called with mu held.
func (c *Channel) ensureProcess(ctx context.Context) (*process, error) {
	if c.process != nil {
		return c.process, nil
	}

	spawned, err := c.spawner.Spawn(ctx)
	if err != nil {
		return nil, fmt.Errorf("spawn worker: %w", err)
	}

	p := &process{Process: spawned}
	c.process = p
	c.metrics.AddWorkerSpawn()
	c.logger.Debugf("worker process %s started", p.ID())

	go c.readLoop(p)

	return p, nil
}

func (c *Channel) readLoop(p *process) {
	reader := bufio.NewReader(p.Responses())
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			c.dispatch(line)
		}
		if err != nil {
			if err != io.EOF {
				c.logger.Warnf("read worker %s: %v", p.ID(), err)
			}
			break
		}
	}

	exitErr := p.Wait()
	c.logger.Debugf("worker process %s exited: %v", p.ID(), exitErr)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.process == p {
		c.process = nil
	}
	c.rejectLocked(p.ID(), ErrWorkerExited)
}

func (c *Channel) dispatch(line []byte) {
	resp := &Response{}
	if err := json.Unmarshal(line, resp); err != nil {
		c.metrics.AddWorkerProtocolError()
		c.logger.Errorf("worker error: %v: %v", err, ErrMalformedMessage)
		return
	}

	switch resp.Kind {
	case Log:
		logging.Forward(c.logger, resp.Level, resp.Message, resp.Args...)
		return
	case Check, Error:
	default:
		c.metrics.AddWorkerProtocolError()
		c.logger.Errorf("worker error: unknown response kind %q: %v", resp.Kind, ErrMalformedMessage)
		return
	}

	if resp.Key == "" {
		c.metrics.AddWorkerProtocolError()
		c.logger.Errorf("worker error: not enough data on message: %v", ErrMalformedMessage)
		return
	}

	c.mu.Lock()
	future, ok := c.pending[resp.Key]
	delete(c.pending, resp.Key)
	c.metrics.SetWorkerPendingRequests(len(c.pending))
	c.mu.Unlock()

	if !ok {
		c.metrics.AddWorkerProtocolError()
		c.logger.Errorf("worker error: %s: %v", resp.Key, ErrUnknownKey)
		return
	}

	failed := resp.Kind == Error
	c.metrics.AddWorkerRequest(string(future.kind), failed, time.Since(future.submittedAt).Seconds())
	if failed {
		future.resolve(nil, newRemoteError(resp))
		return
	}
	future.resolve(resp.Result, nil)
}

func (c *Channel) forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, key)
	c.metrics.SetWorkerPendingRequests(len(c.pending))
}

// rejectLocked rejects the pending requests sent to the given process, or
// every pending request if processID is empty. It must be called with mu
// held.
func (c *Channel) rejectLocked(processID string, err error) {
	for key, future := range c.pending {
		if processID != "" && future.processID != processID {
			continue
		}
		delete(c.pending, key)
		future.resolve(nil, fmt.Errorf("%s %s: %w", future.kind, key, err))
	}
	c.metrics.SetWorkerPendingRequests(len(c.pending))
}

func (p *process) send(req *Request) error {
	line, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	line = append(line, '\n')

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if _, err := p.Write(line); err != nil {
		return err
	}
	return nil
}

// newKey returns a correlation key: the submission time in milliseconds and
// a random suffix.
func newKey() string {
	return fmt.Sprintf("%d_%s", time.Now().UnixMilli(), shortuuid.New())
}
