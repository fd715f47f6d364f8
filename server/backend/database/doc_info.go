/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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

package database

import (
	"time"

	"github.com/yorkie-team/revisiond/api/types"
)

// DocInfo is the part of a document that the revision history reads: its live
// content and the timestamps that drive the save policy. Documents are owned
// by the editor; revisions only reference them.
type DocInfo struct {
	// ID is the unique ID of the document.
	ID types.ID `bson:"_id"`

	// Content is the current text of the document.
	Content string `bson:"content"`

	// Authorship is the opaque attribution payload of the document.
	Authorship string `bson:"authorship"`

	// CreatedAt is the time when the document was created.
	CreatedAt time.Time `bson:"created_at"`

	// LastChangeAt is the time of the last edit. Zero if never edited.
	LastChangeAt time.Time `bson:"lastchange_at"`

	// SavedAt is the update time of the revision that captured the document
	// last. Zero if never saved.
	SavedAt time.Time `bson:"saved_at"`
}

// IsPendingSave returns true if the latest content of the document may not
// be captured by a revision: it was never saved, or it changed since.
func (i *DocInfo) IsPendingSave() bool {
	if !i.LastChangeAt.IsZero() && !i.LastChangeAt.After(i.CreatedAt) {
		return false
	}

	if i.SavedAt.IsZero() {
		return true
	}

	return !i.LastChangeAt.IsZero() && i.SavedAt.Before(i.LastChangeAt)
}

// DeepCopy returns a deep copy of the DocInfo.
func (i *DocInfo) DeepCopy() *DocInfo {
	if i == nil {
		return nil
	}

	clone := *i
	return &clone
}
