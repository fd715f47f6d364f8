/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

// Package database provides the storage interface of the revision history
// service: the documents it snapshots and the revisions it keeps for them.
package database

import (
	"context"
	gotime "time"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/pkg/errors"
)

var (
	// ErrDocumentNotFound is returned when the document could not be found.
	ErrDocumentNotFound = errors.NotFound("document not found").WithCode("ErrDocumentNotFound")

	// ErrRevisionNotFound is returned when the revision could not be found.
	ErrRevisionNotFound = errors.NotFound("revision not found").WithCode("ErrRevisionNotFound")
)

// Database represents a store of documents and their revisions. Every method
// may fail with a store error, which callers propagate.
type Database interface {
	// Close all resources of this database.
	Close() error

	// CreateDocInfo creates a new document with the given content.
	CreateDocInfo(
		ctx context.Context,
		content string,
		authorship string,
		createdAt gotime.Time,
	) (*DocInfo, error)

	// FindDocInfoByID returns the document of the given ID.
	FindDocInfoByID(ctx context.Context, id types.ID) (*DocInfo, error)

	// UpdateDocInfoContent records a live edit of the document.
	UpdateDocInfoContent(
		ctx context.Context,
		id types.ID,
		content string,
		authorship string,
		changedAt gotime.Time,
	) (*DocInfo, error)

	// UpdateDocInfoSavedAt marks the document as saved at the given time.
	UpdateDocInfoSavedAt(ctx context.Context, id types.ID, savedAt gotime.Time) error

	// FindDocInfosPendingSave returns the documents whose latest content may
	// not be captured by a revision yet.
	FindDocInfosPendingSave(ctx context.Context) ([]*DocInfo, error)

	// PurgeDocument removes the document and every revision of it.
	PurgeDocument(ctx context.Context, id types.ID) error

	// CreateRevisionInfo stores a new revision. The ID is assigned by the
	// database; the given info is not modified.
	CreateRevisionInfo(ctx context.Context, info *RevisionInfo) (*RevisionInfo, error)

	// FindRevisionInfosByDocID returns the revisions of the document ordered
	// by creation time, newest first.
	FindRevisionInfosByDocID(ctx context.Context, docID types.ID) ([]*RevisionInfo, error)

	// CountRevisionInfosSince returns the number of revisions of the document
	// created at or after the given time.
	CountRevisionInfosSince(ctx context.Context, docID types.ID, since gotime.Time) (int, error)

	// UpdateRevisionInfoUpdatedAt bumps the update time of the revision and
	// returns the updated revision.
	UpdateRevisionInfoUpdatedAt(
		ctx context.Context,
		id types.ID,
		updatedAt gotime.Time,
	) (*RevisionInfo, error)

	// ClearRevisionInfoContent drops the full content of a superseded revision.
	ClearRevisionInfoContent(ctx context.Context, id types.ID) error
}
