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

// Package worker runs patch computation and revision replay in a separate
// process and correlates its answers with the requests of the host.
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/yorkie-team/revisiond/pkg/errors"
	"github.com/yorkie-team/revisiond/pkg/history"
	"github.com/yorkie-team/revisiond/pkg/patch"
)

// Serve runs the worker loop: it reads one JSON request per line from r and
// writes responses to w, one per line. Requests are handled in order. It
// returns nil when r is exhausted.
func Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	s := &server{encoder: json.NewEncoder(w)}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if err := s.handleLine(line); err != nil {
				return err
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
	}
}

type server struct {
	encoder *json.Encoder
}

func (s *server) handleLine(line []byte) error {
	req := &Request{}
	if err := json.Unmarshal(line, req); err != nil {
		return s.log("error", "worker error: cannot decode request", "error", err.Error())
	}

	// Without a key the failure cannot be correlated; the caller times out.
	if req.Key == "" {
		return s.log("error", "worker error: not enough data")
	}

	if err := req.Validate(); err != nil {
		if logErr := s.log("error", "worker error: "+err.Error()); logErr != nil {
			return logErr
		}
		return s.fail(req.Key, err)
	}

	start := time.Now()
	result, err := guard(req.Kind, func() (interface{}, error) {
		switch req.Kind {
		case CreatePatch:
			return s.createPatch(req)
		default:
			return history.Replay(req.Revisions, *req.Count)
		}
	})
	if err != nil {
		if logErr := s.log("error", fmt.Sprintf("%s: worker error", req.Kind), "error", err.Error()); logErr != nil {
			return logErr
		}
		return s.fail(req.Key, err)
	}

	elapsed := fmt.Sprintf("%dms", time.Since(start).Milliseconds())
	if err := s.log("debug", string(req.Kind), "elapsed", elapsed); err != nil {
		return err
	}

	return s.check(req.Key, result)
}

// guard runs fn and turns a panic into an error, so that a single bad
// request is answered instead of taking the worker down.
func guard(kind RequestKind, fn func() (interface{}, error)) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%s panicked: %v: %w", kind, r, ErrWorkerFailed)
		}
	}()

	return fn()
}

func (s *server) createPatch(req *Request) (string, error) {
	p := patch.Diff(*req.SourceText, *req.TargetText)
	if !p.Empty() {
		if err := s.log("debug", string(CreatePatch), "patch", p.String()); err != nil {
			return "", err
		}
	}

	return p.String(), nil
}

func (s *server) check(key string, result interface{}) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return s.fail(key, fmt.Errorf("encode result: %w", err))
	}

	return s.send(&Response{
		Kind:   Check,
		Key:    key,
		Result: encoded,
	})
}

func (s *server) fail(key string, err error) error {
	return s.send(&Response{
		Kind:  Error,
		Key:   key,
		Error: err.Error(),
		Codes: errors.CodesOf(err),
	})
}

// log sends a log record to the host. args are key-value pairs. The worker
// has no logger of its own: records are emitted by the host logger at its
// configured level.
func (s *server) log(level, msg string, args ...interface{}) error {
	return s.send(&Response{
		Kind:    Log,
		Level:   level,
		Message: msg,
		Args:    args,
	})
}

func (s *server) send(resp *Response) error {
	if err := s.encoder.Encode(resp); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
