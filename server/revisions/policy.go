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


// Package revisions saves the content of documents as a chain of revisions
// and rebuilds the content of a document at a past revision.
package revisions

import (
	"time"

	"github.com/yorkie-team/revisiond/server/backend"
	"github.com/yorkie-team/revisiond/server/backend/database"
)

const (
	// DefaultIdleThreshold is how long a document stays unchanged before its
	// pending changes are saved.
	DefaultIdleThreshold = 5 * time.Minute

	// DefaultMaxSaveInterval is how long a document may keep changing before
	// a revision is saved anyway.
	DefaultMaxSaveInterval = 10 * time.Minute
)

// Policy decides when a pending document is saved.
type Policy struct {
	IdleThreshold   time.Duration
	MaxSaveInterval time.Duration
}

// DefaultPolicy returns the policy with the default thresholds.
func DefaultPolicy() Policy {
	return Policy{
		IdleThreshold:   DefaultIdleThreshold,
		MaxSaveInterval: DefaultMaxSaveInterval,
	}
}

// PolicyOf returns the policy configured for the backend.
func PolicyOf(conf *backend.Config) Policy {
	return Policy{
		IdleThreshold:   conf.ParseIdleThreshold(),
		MaxSaveInterval: conf.ParseMaxSaveInterval(),
	}
}

// IsDue returns whether the document should be saved as a revision at now.
// A document that was never saved is due as soon as it has content. An
// edited document is due once it has been idle for IdleThreshold, or once
// its last change is MaxSaveInterval past its last save.
func IsDue(doc *database.DocInfo, now time.Time, policy Policy) bool {
	if !doc.IsPendingSave() {
		return false
	}

	if doc.SavedAt.IsZero() && doc.Content == "" {
		return false
	}

	if doc.LastChangeAt.IsZero() || doc.SavedAt.IsZero() {
		return true
	}

	if !now.Before(doc.LastChangeAt.Add(policy.IdleThreshold)) {
		return true
	}

	return !doc.LastChangeAt.Before(doc.SavedAt.Add(policy.MaxSaveInterval))
}
