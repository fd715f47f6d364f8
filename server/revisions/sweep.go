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


package revisions

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/yorkie-team/revisiond/server/backend"
	"github.com/yorkie-team/revisiond/server/backend/database"
	"github.com/yorkie-team/revisiond/server/logging"
)

// SweepAll saves every pending document that is due. Documents are saved in
// parallel and all saves are awaited.
//
// It returns the saved documents. The result is nil when pending documents
// exist but none of them is due yet, and empty when nothing is pending. A
// failed save does not stop the others; the failures are returned joined.
func SweepAll(ctx context.Context, be *backend.Backend) ([]*database.DocInfo, error) {
	start := time.Now()

	candidates, err := be.DB.FindDocInfosPendingSave(ctx)
	if err != nil {
		return nil, fmt.Errorf("find pending documents: %w", err)
	}
	if len(candidates) == 0 {
		return []*database.DocInfo{}, nil
	}

	now := be.Clock.Now()
	policy := PolicyOf(be.Config)
	var due []*database.DocInfo
	for _, doc := range candidates {
		if IsDue(doc, now, policy) {
			due = append(due, doc)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}

	var mu gosync.Mutex
	saved := make([]*database.DocInfo, 0, len(due))
	var errs []error

	var waits []<-chan struct{}
	for _, doc := range due {
		doc := doc
		done, err := be.Background.AttachGoroutine(ctx, func(ctx context.Context) {
			_, err := SaveDue(ctx, be, doc.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			saved = append(saved, doc)
		}, "revision-save")
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("save %s: %w", doc.ID, err))
			mu.Unlock()
			continue
		}
		waits = append(waits, done)
	}

	for _, done := range waits {
		<-done
	}

	be.Metrics.ObserveSweep(time.Since(start).Seconds(), len(saved))

	mu.Lock()
	defer mu.Unlock()
	return saved, errors.Join(errs...)
}

// CheckAll sweeps until nothing is left to save, a sweep finds only
// documents that are not due yet, or maxSweeps sweeps ran.
func CheckAll(ctx context.Context, be *backend.Backend, maxSweeps int) error {
	for i := 0; i < maxSweeps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		saved, err := SweepAll(ctx, be)
		if err != nil {
			return err
		}
		if saved == nil {
			logging.From(ctx).Debugf("revision sweep %d: pending documents are not due", i)
			return nil
		}
		if len(saved) == 0 {
			return nil
		}

		logging.From(ctx).Infof("revision sweep %d: saved %d documents", i, len(saved))
	}

	return nil
}
