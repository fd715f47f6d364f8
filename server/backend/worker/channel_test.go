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
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yorkie-team/revisiond/pkg/history"
	"github.com/yorkie-team/revisiond/pkg/patch"
	"github.com/yorkie-team/revisiond/server/profiling/prometheus"
)

// scriptedProcess is a worker whose responses are written by the test.
type scriptedProcess struct {
	id       string
	reqW     *io.PipeWriter
	respR    *io.PipeReader
	respW    *io.PipeWriter
	requests chan *Request
	done     chan struct{}
	exitOnce sync.Once
}

func newScriptedProcess(id string) *scriptedProcess {
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	p := &scriptedProcess{
		id:       id,
		reqW:     reqW,
		respR:    respR,
		respW:    respW,
		requests: make(chan *Request, 16),
		done:     make(chan struct{}),
	}

	go func() {
		scanner := bufio.NewScanner(reqR)
		for scanner.Scan() {
			req := &Request{}
			if err := json.Unmarshal(scanner.Bytes(), req); err == nil {
				p.requests <- req
			}
		}
	}()

	return p
}

func (p *scriptedProcess) ID() string { return p.id }

func (p *scriptedProcess) Write(b []byte) (int, error) { return p.reqW.Write(b) }

func (p *scriptedProcess) Responses() io.Reader { return p.respR }

func (p *scriptedProcess) Wait() error {
	<-p.done
	return nil
}

func (p *scriptedProcess) Kill() error {
	p.exit()
	return nil
}

func (p *scriptedProcess) exit() {
	p.exitOnce.Do(func() {
		_ = p.reqW.Close()
		_ = p.respW.Close()
		close(p.done)
	})
}

func (p *scriptedProcess) respond(t *testing.T, resp *Response) {
	line, err := json.Marshal(resp)
	require.NoError(t, err)
	_, err = p.respW.Write(append(line, '\n'))
	require.NoError(t, err)
}

func (p *scriptedProcess) next(t *testing.T) *Request {
	select {
	case req := <-p.requests:
		return req
	case <-time.After(5 * time.Second):
		t.Fatal("no request arrived")
		return nil
	}
}

type scriptedSpawner struct {
	mu        sync.Mutex
	processes []*scriptedProcess
}

func (s *scriptedSpawner) Spawn(_ context.Context) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := newScriptedProcess(string(rune('a' + len(s.processes))))
	s.processes = append(s.processes, p)
	return p, nil
}

func (s *scriptedSpawner) process(i int) *scriptedProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processes[i]
}

func (s *scriptedSpawner) spawned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processes)
}

func newTestChannel(t *testing.T, spawner Spawner) (*Channel, *observer.ObservedLogs) {
	metrics, err := prometheus.NewMetrics()
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	ch := NewChannel(spawner, metrics)
	ch.logger = zap.New(core).Sugar()
	t.Cleanup(func() {
		assert.NoError(t, ch.Close())
	})

	return ch, logs
}

func checkResponse(t *testing.T, key string, result interface{}) *Response {
	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	return &Response{Kind: Check, Key: key, Result: encoded}
}

func TestChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("in-process worker round trip test", func(t *testing.T) {
		ch, _ := newTestChannel(t, &InProcessSpawner{})

		text, err := ch.CreatePatch(ctx, "hello", "hello world")
		assert.NoError(t, err)
		p, err := patch.Parse(text)
		assert.NoError(t, err)
		applied, err := patch.Apply(p, "hello", patch.Forward)
		assert.NoError(t, err)
		assert.Equal(t, "hello world", applied)

		text, err = ch.CreatePatch(ctx, "same", "same")
		assert.NoError(t, err)
		assert.Empty(t, text)

		base, newest := "hello", "hello world"
		snapshot, err := ch.GetRevisionAt(ctx, []history.Revision{
			{Patch: p.String(), Content: &newest},
			{LastContent: &base},
		}, 2)
		assert.NoError(t, err)
		assert.Equal(t, "hello", snapshot.Content)
		assert.Equal(t, 0, ch.Pending())
	})

	t.Run("worker failure keeps its codes test", func(t *testing.T) {
		ch, _ := newTestChannel(t, &InProcessSpawner{})

		base, newest := "hello", "goodbye"
		_, err := ch.GetRevisionAt(ctx, []history.Revision{
			{Patch: patch.Diff("hello!", "goodbye").String(), Content: &newest},
			{Patch: patch.Diff("abc", "abcd").String()},
			{LastContent: &base},
		}, 2)
		assert.ErrorIs(t, err, history.ErrReconstruction)
		assert.ErrorIs(t, err, patch.ErrPatchApply)

		_, err = ch.GetRevisionAt(ctx, nil, 1)
		assert.ErrorIs(t, err, ErrMalformedMessage)
	})

	t.Run("responses are correlated by key test", func(t *testing.T) {
		spawner := &scriptedSpawner{}
		ch, _ := newTestChannel(t, spawner)

		source, target := "a", "b"
		first, err := ch.Submit(ctx, &Request{Kind: CreatePatch, SourceText: &source, TargetText: &target})
		require.NoError(t, err)
		second, err := ch.Submit(ctx, &Request{Kind: CreatePatch, SourceText: &target, TargetText: &source})
		require.NoError(t, err)
		assert.NotEqual(t, first.Key(), second.Key())

		p := spawner.process(0)
		req1, req2 := p.next(t), p.next(t)
		assert.Equal(t, first.Key(), req1.Key)
		assert.Equal(t, second.Key(), req2.Key)

		// answered in reverse order
		p.respond(t, checkResponse(t, req2.Key, "second"))
		p.respond(t, checkResponse(t, req1.Key, "first"))

		result, err := second.Wait(ctx)
		assert.NoError(t, err)
		assert.JSONEq(t, `"second"`, string(result))
		result, err = first.Wait(ctx)
		assert.NoError(t, err)
		assert.JSONEq(t, `"first"`, string(result))
		assert.Equal(t, 1, spawner.spawned())
	})

	t.Run("log responses are forwarded test", func(t *testing.T) {
		spawner := &scriptedSpawner{}
		ch, logs := newTestChannel(t, spawner)

		source := "a"
		future, err := ch.Submit(ctx, &Request{Kind: CreatePatch, SourceText: &source, TargetText: &source})
		require.NoError(t, err)

		p := spawner.process(0)
		req := p.next(t)
		p.respond(t, &Response{Kind: Log, Level: "warn", Message: "from worker", Args: []interface{}{"elapsed", "3ms"}})
		p.respond(t, checkResponse(t, req.Key, ""))

		_, err = future.Wait(ctx)
		assert.NoError(t, err)

		forwarded := logs.FilterMessage("from worker").All()
		require.Len(t, forwarded, 1)
		assert.Equal(t, zapcore.WarnLevel, forwarded[0].Level)
		assert.Equal(t, "3ms", forwarded[0].ContextMap()["elapsed"])
	})

	t.Run("unknown key is reported and dropped test", func(t *testing.T) {
		spawner := &scriptedSpawner{}
		ch, logs := newTestChannel(t, spawner)

		source := "a"
		future, err := ch.Submit(ctx, &Request{Kind: CreatePatch, SourceText: &source, TargetText: &source})
		require.NoError(t, err)

		p := spawner.process(0)
		req := p.next(t)
		p.respond(t, checkResponse(t, "0_unknown", "stray"))
		p.respond(t, &Response{Kind: Check})
		p.respond(t, checkResponse(t, req.Key, "mine"))

		result, err := future.Wait(ctx)
		assert.NoError(t, err)
		assert.JSONEq(t, `"mine"`, string(result))
		assert.Equal(t, 2, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	})

	t.Run("worker exit rejects pending and respawns test", func(t *testing.T) {
		spawner := &scriptedSpawner{}
		ch, _ := newTestChannel(t, spawner)

		source := "a"
		future, err := ch.Submit(ctx, &Request{Kind: CreatePatch, SourceText: &source, TargetText: &source})
		require.NoError(t, err)
		spawner.process(0).next(t)
		spawner.process(0).exit()

		_, err = future.Wait(ctx)
		assert.ErrorIs(t, err, ErrWorkerExited)

		future, err = ch.Submit(ctx, &Request{Kind: CreatePatch, SourceText: &source, TargetText: &source})
		require.NoError(t, err)
		assert.Equal(t, 2, spawner.spawned())

		p := spawner.process(1)
		req := p.next(t)
		p.respond(t, checkResponse(t, req.Key, "again"))
		result, err := future.Wait(ctx)
		assert.NoError(t, err)
		assert.JSONEq(t, `"again"`, string(result))
	})

	t.Run("caller timeout forgets the request test", func(t *testing.T) {
		spawner := &scriptedSpawner{}
		ch, _ := newTestChannel(t, spawner)

		timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		_, err := ch.CreatePatch(timeoutCtx, "a", "b")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, ch.Pending())
	})

	t.Run("close rejects pending requests test", func(t *testing.T) {
		spawner := &scriptedSpawner{}
		ch, _ := newTestChannel(t, spawner)

		source := "a"
		future, err := ch.Submit(ctx, &Request{Kind: CreatePatch, SourceText: &source, TargetText: &source})
		require.NoError(t, err)

		assert.NoError(t, ch.Close())
		_, err = future.Wait(ctx)
		assert.ErrorIs(t, err, ErrChannelClosed)

		_, err = ch.Submit(ctx, &Request{Kind: CreatePatch, SourceText: &source, TargetText: &source})
		assert.ErrorIs(t, err, ErrChannelClosed)
	})
}
