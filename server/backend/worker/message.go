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
	"encoding/json"
	"fmt"

	"github.com/yorkie-team/revisiond/pkg/errors"
	"github.com/yorkie-team/revisiond/pkg/history"
	"github.com/yorkie-team/revisiond/pkg/patch"
)

var (
	// ErrMalformedMessage is returned when a message misses required fields
	// or cannot be decoded.
	ErrMalformedMessage = errors.InvalidArgument("malformed worker message").WithCode("ErrMalformedMessage")

	// ErrUnknownKey is reported when a response carries a key that no
	// request is waiting for.
	ErrUnknownKey = errors.FailedPrecond("unknown correlation key").WithCode("ErrUnknownKey")

	// ErrWorkerExited is returned to requests whose worker process exited
	// before answering them.
	ErrWorkerExited = errors.Unavailable("worker process exited").WithCode("ErrWorkerExited")

	// ErrChannelClosed is returned when the channel is used after Close.
	ErrChannelClosed = errors.Unavailable("worker channel closed").WithCode("ErrChannelClosed")

	// ErrWorkerFailed is returned when the worker answers with an error that
	// has no known code.
	ErrWorkerFailed = errors.Internal("worker request failed").WithCode("ErrWorkerFailed")
)

// RequestKind is the operation a request asks the worker to run.
type RequestKind string

const (
	// CreatePatch asks for the patch between SourceText and TargetText.
	CreatePatch RequestKind = "createPatch"

	// GetRevisionAt asks for the content of Revisions[Count-1].
	GetRevisionAt RequestKind = "getRevisionAt"
)

// ResponseKind is the kind of message the worker sends back.
type ResponseKind string

const (
	// Check carries the result of a request.
	Check ResponseKind = "check"

	// Error carries the failure of a request.
	Error ResponseKind = "error"

	// Log carries a log record of the worker. It has no key.
	Log ResponseKind = "log"
)

// Request is a message from the host to the worker.
type Request struct {
	Kind RequestKind `json:"kind"`
	Key  string      `json:"key"`

	SourceText *string `json:"sourceText,omitempty"`
	TargetText *string `json:"targetText,omitempty"`

	Revisions []history.Revision `json:"revisions,omitempty"`
	Count     *int               `json:"count,omitempty"`
}

// Validate returns ErrMalformedMessage if the request misses the fields of
// its kind.
func (r *Request) Validate() error {
	switch r.Kind {
	case CreatePatch:
		if r.SourceText == nil || r.TargetText == nil {
			return fmt.Errorf("not enough data on %s: %w", r.Kind, ErrMalformedMessage)
		}
	case GetRevisionAt:
		if r.Revisions == nil || r.Count == nil {
			return fmt.Errorf("not enough data on %s: %w", r.Kind, ErrMalformedMessage)
		}
	default:
		return fmt.Errorf("unknown request kind %q: %w", r.Kind, ErrMalformedMessage)
	}

	return nil
}

// Response is a message from the worker to the host.
type Response struct {
	Kind ResponseKind `json:"kind"`
	Key  string       `json:"key,omitempty"`

	Result json.RawMessage `json:"result,omitempty"`

	Error string   `json:"error,omitempty"`
	Codes []string `json:"codes,omitempty"`

	Level   string        `json:"level,omitempty"`
	Message string        `json:"message,omitempty"`
	Args    []interface{} `json:"args,omitempty"`
}

// RemoteError is an error raised inside the worker. It unwraps to the known
// errors whose codes the worker reported.
type RemoteError struct {
	Message string
	causes  []error
}

// Error returns the message of the worker.
func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap returns the known errors the worker reported.
func (e *RemoteError) Unwrap() []error {
	return e.causes
}

var knownErrors = []error{
	history.ErrReconstruction,
	patch.ErrPatchApply,
	patch.ErrInvalidPatch,
	ErrMalformedMessage,
}

func newRemoteError(resp *Response) *RemoteError {
	var causes []error
	for _, code := range resp.Codes {
		for _, known := range knownErrors {
			if errors.CodeOf(known) == code {
				causes = append(causes, known)
			}
		}
	}
	if len(causes) == 0 {
		causes = append(causes, ErrWorkerFailed)
	}

	return &RemoteError{
		Message: resp.Error,
		causes:  causes,
	}
}
