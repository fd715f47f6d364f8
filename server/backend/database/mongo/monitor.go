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

package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.uber.org/zap"

	"github.com/yorkie-team/revisiond/server/logging"
)

// QueryMonitor logs the commands sent to MongoDB and flags slow ones.
type QueryMonitor struct {
	logger             logging.Logger
	slowQueryThreshold time.Duration
}

// NewQueryMonitor creates a new instance of QueryMonitor. A zero threshold
// disables slow query detection.
func NewQueryMonitor(slowQueryThreshold time.Duration) *QueryMonitor {
	return &QueryMonitor{
		logger:             logging.New("mongo"),
		slowQueryThreshold: slowQueryThreshold,
	}
}

// CreateCommandMonitor creates a new instance of event.CommandMonitor.
// Command bodies are not logged: they carry whole document texts.
func (m *QueryMonitor) CreateCommandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			if logging.Enabled(zap.DebugLevel) {
				m.logger.Debugf("STAR: %d(%s) on %s", evt.RequestID, evt.CommandName, evt.DatabaseName)
			}
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			if m.isSlow(evt.Duration) {
				m.logger.Warnf("SLOW: %d(%s): %dms", evt.RequestID, evt.CommandName, evt.Duration.Milliseconds())
				return
			}

			m.logger.Debugf("SUCC: %d(%s): %dms", evt.RequestID, evt.CommandName, evt.Duration.Milliseconds())
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			m.logger.Warnf("FAIL: %d(%s), %s: %dms",
				evt.RequestID,
				evt.CommandName,
				evt.Failure,
				evt.Duration.Milliseconds(),
			)
		},
	}
}

func (m *QueryMonitor) isSlow(duration time.Duration) bool {
	return m.slowQueryThreshold > 0 && duration > m.slowQueryThreshold
}
