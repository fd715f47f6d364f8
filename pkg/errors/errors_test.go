/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
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

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code     StatusCode
		want     string
		isClient bool
	}{
		{ErrCodeInvalidArgument, "invalid_argument", true},
		{ErrCodeNotFound, "not_found", true},
		{ErrCodeFailedPrecondition, "failed_precondition", true},
		{ErrCodeInternal, "internal", false},
		{ErrCodeUnavailable, "unavailable", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
			assert.Equal(t, tt.isClient, tt.code.IsClientError())
			assert.Equal(t, !tt.isClient, tt.code.IsServerError())
		})
	}

	assert.Equal(t, "code_999", StatusCode(999).String())
}

func TestStatusOf(t *testing.T) {
	errRevisionNotFound := NotFound("revision not found").WithCode("ErrRevisionNotFound")

	t.Run("direct status error", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, StatusOf(errRevisionNotFound))
		assert.Equal(t, "ErrRevisionNotFound", CodeOf(errRevisionNotFound))
		assert.True(t, IsNotFound(errRevisionNotFound))
	})

	t.Run("wrapped status error", func(t *testing.T) {
		wrapped := fmt.Errorf("reconstruct doc1: %w", errRevisionNotFound)
		assert.Equal(t, ErrCodeNotFound, StatusOf(wrapped))
		assert.ErrorIs(t, wrapped, errRevisionNotFound)
		assert.Equal(t, "ErrRevisionNotFound", CodeOf(wrapped))
	})

	t.Run("plain error has no status", func(t *testing.T) {
		assert.Equal(t, StatusCode(0), StatusOf(errors.New("plain")))
		assert.Equal(t, StatusCode(0), StatusOf(nil))
		assert.Equal(t, "", CodeOf(errors.New("plain")))
		assert.False(t, IsStatus(errors.New("plain"), ErrCodeInternal))
	})
}

func TestCodesOf(t *testing.T) {
	errApply := Internal("patch does not apply").WithCode("ErrPatchApply")
	errReconstruct := Internal("cannot reconstruct revision").WithCode("ErrReconstruction")

	t.Run("double wrapped chain", func(t *testing.T) {
		err := fmt.Errorf("undo revision 1: %w", fmt.Errorf("%w: %w", errReconstruct, errApply))
		assert.Equal(t, []string{"ErrReconstruction", "ErrPatchApply"}, CodesOf(err))
	})

	t.Run("errors without code", func(t *testing.T) {
		assert.Empty(t, CodesOf(errors.New("plain")))
		assert.Empty(t, CodesOf(Internal("no code")))
		assert.Empty(t, CodesOf(nil))
	})
}
