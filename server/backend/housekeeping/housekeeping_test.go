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

package housekeeping_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/revisiond/server/backend/housekeeping"
)

func TestHousekeeping(t *testing.T) {
	t.Run("run once test", func(t *testing.T) {
		h, err := housekeeping.New(&housekeeping.Config{Interval: "1h", MaxSweepsPerRun: 1})
		require.NoError(t, err)

		var order []string
		errBroken := errors.New("broken")
		assert.NoError(t, h.RegisterTask("first", func(ctx context.Context) error {
			order = append(order, "first")
			return errBroken
		}))
		assert.NoError(t, h.RegisterTask("second", func(ctx context.Context) error {
			order = append(order, "second")
			return nil
		}))

		err = h.RunOnce(context.Background())
		assert.ErrorIs(t, err, errBroken)
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("periodic run test", func(t *testing.T) {
		h, err := housekeeping.New(&housekeeping.Config{Interval: "10ms", MaxSweepsPerRun: 1})
		require.NoError(t, err)

		var runs atomic.Int32
		assert.NoError(t, h.RegisterTask("count", func(ctx context.Context) error {
			runs.Add(1)
			return nil
		}))

		assert.NoError(t, h.Start())
		assert.Eventually(t, func() bool {
			return runs.Load() >= 3
		}, 5*time.Second, 10*time.Millisecond)
		assert.NoError(t, h.Stop())

		stopped := runs.Load()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, stopped, runs.Load())
	})

	t.Run("register after start test", func(t *testing.T) {
		h, err := housekeeping.New(&housekeeping.Config{Interval: "1h", MaxSweepsPerRun: 1})
		require.NoError(t, err)

		assert.NoError(t, h.Start())
		defer func() {
			assert.NoError(t, h.Stop())
		}()

		err = h.RegisterTask("late", func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, housekeeping.ErrAlreadyStarted)
		assert.ErrorIs(t, h.Start(), housekeeping.ErrAlreadyStarted)
	})

	t.Run("invalid interval test", func(t *testing.T) {
		_, err := housekeeping.New(&housekeeping.Config{Interval: "soon"})
		assert.Error(t, err)
	})
}
