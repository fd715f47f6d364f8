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
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/xid"
)

// Process is a running worker. Requests are written to it and responses
// are read from Responses until the worker exits.
type Process interface {
	io.Writer

	// ID returns the identifier of the process used in logs.
	ID() string

	// Responses returns the stream of responses of the worker.
	Responses() io.Reader

	// Wait blocks until the process exits.
	Wait() error

	// Kill terminates the process.
	Kill() error
}

// Spawner starts worker processes.
type Spawner interface {
	Spawn(ctx context.Context) (Process, error)
}

// ExecSpawner runs the worker as a child process that speaks the protocol
// over its standard input and output.
type ExecSpawner struct {
	// Path is the executable, usually the revisiond binary itself.
	Path string

	// Args are the arguments that select the worker mode.
	Args []string
}

// Spawn starts a new child process.
func (s *ExecSpawner) Spawn(_ context.Context) (Process, error) {
	// The child outlives the request that spawned it; Kill stops it.
	cmd := exec.Command(s.Path, s.Args...) // #nosec G204
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open worker stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open worker stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker %s: %w", s.Path, err)
	}

	return &execProcess{
		id:     xid.New().String(),
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdout,
	}, nil
}

type execProcess struct {
	id     string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
}

func (p *execProcess) ID() string {
	return p.id
}

func (p *execProcess) Write(b []byte) (int, error) {
	return p.stdin.Write(b)
}

func (p *execProcess) Responses() io.Reader {
	return p.stdout
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Kill() error {
	if err := p.stdin.Close(); err != nil {
		return fmt.Errorf("close worker stdin: %w", err)
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill worker %s: %w", p.id, err)
	}
	return nil
}

// InProcessSpawner runs the worker loop on a goroutine of the host, joined
// by in-memory pipes. It is used when no worker binary is configured.
type InProcessSpawner struct{}

// Spawn starts a new worker goroutine.
func (s *InProcessSpawner) Spawn(_ context.Context) (Process, error) {
	reqReader, reqWriter := io.Pipe()
	respReader, respWriter := io.Pipe()

	p := &pipeProcess{
		id:         xid.New().String(),
		reqWriter:  reqWriter,
		respReader: respReader,
		done:       make(chan struct{}),
	}

	go func() {
		defer close(p.done)
		p.err = Serve(context.Background(), reqReader, respWriter)
		_ = reqReader.CloseWithError(ErrWorkerExited)
		_ = respWriter.CloseWithError(p.err)
	}()

	return p, nil
}

type pipeProcess struct {
	id         string
	reqWriter  *io.PipeWriter
	respReader *io.PipeReader
	done       chan struct{}
	err        error
}

func (p *pipeProcess) ID() string {
	return p.id
}

func (p *pipeProcess) Write(b []byte) (int, error) {
	return p.reqWriter.Write(b)
}

func (p *pipeProcess) Responses() io.Reader {
	return p.respReader
}

func (p *pipeProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *pipeProcess) Kill() error {
	return p.reqWriter.Close()
}
