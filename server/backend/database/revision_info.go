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

package database

import (
	"sort"
	"time"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/pkg/history"
)

// RevisionInfo is a stored point in the history of a document. Its Patch turns
// the content of the previous revision into the content of this one.
type RevisionInfo struct {
	// ID is the unique identifier of the revision.
	ID types.ID `bson:"_id"`

	// DocID is the ID of the document that this revision is for.
	DocID types.ID `bson:"doc_id"`

	// Length is the length of the content at this revision in characters.
	Length int `bson:"length"`

	// Content is the full text at this revision. It is kept only on the newest
	// revision and cleared once a newer revision supersedes it.
	Content *string `bson:"content"`

	// LastContent is the baseline text of the chain, set on the first
	// revision of the document only.
	LastContent *string `bson:"last_content"`

	// Patch is the serialized patch from the previous revision. Empty for the
	// first revision.
	Patch string `bson:"patch"`

	// Authorship is the attribution payload copied from the document.
	Authorship string `bson:"authorship"`

	// CreatedAt is the time when this revision was created.
	CreatedAt time.Time `bson:"created_at"`

	// UpdatedAt is the last time a save found this revision up to date.
	UpdatedAt time.Time `bson:"updated_at"`
}

// ResolvedContent returns the full text stored on the revision, if any.
func (r *RevisionInfo) ResolvedContent() string {
	if r.Content != nil {
		return *r.Content
	}
	if r.LastContent != nil {
		return *r.LastContent
	}
	return ""
}

// ToHistoryRevision converts the revision into its replay view.
func (r *RevisionInfo) ToHistoryRevision() history.Revision {
	return history.Revision{
		Patch:       r.Patch,
		Content:     cloneString(r.Content),
		LastContent: cloneString(r.LastContent),
		Authorship:  r.Authorship,
		Length:      r.Length,
		CreatedAt:   r.CreatedAt,
	}
}

// ToTypesRevisionSummary converts the revision into its listing view.
func (r *RevisionInfo) ToTypesRevisionSummary() *types.RevisionSummary {
	return &types.RevisionSummary{
		ID:        r.ID,
		Length:    r.Length,
		CreatedAt: r.CreatedAt,
	}
}

// DeepCopy creates a deep copy of the RevisionInfo.
func (r *RevisionInfo) DeepCopy() *RevisionInfo {
	if r == nil {
		return nil
	}

	clone := *r
	clone.Content = cloneString(r.Content)
	clone.LastContent = cloneString(r.LastContent)
	return &clone
}

// SortNewestFirst orders revisions by creation time, newest first. IDs break
// ties since they are generated in increasing order.
func SortNewestFirst(infos []*RevisionInfo) {
	sort.SliceStable(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.After(infos[j].CreatedAt)
		}
		return infos[i].ID > infos[j].ID
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}
