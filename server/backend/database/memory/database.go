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

// Package memory implements the database interface using in-memory database.
package memory

import (
	"context"
	"fmt"
	gotime "time"

	"github.com/hashicorp/go-memdb"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/server/backend/database"
)

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db *memdb.MemDB
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db: memDB,
	}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}

// CreateDocInfo creates a new document with the given content.
func (d *DB) CreateDocInfo(
	_ context.Context,
	content string,
	authorship string,
	createdAt gotime.Time,
) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info := &database.DocInfo{
		ID:         newID(),
		Content:    content,
		Authorship: authorship,
		CreatedAt:  createdAt,
	}
	if err := txn.Insert(tblDocuments, info); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	txn.Commit()

	return info.DeepCopy(), nil
}

// FindDocInfoByID returns the document of the given ID.
func (d *DB) FindDocInfoByID(_ context.Context, id types.ID) (*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	info, err := findDocInfo(txn, id)
	if err != nil {
		return nil, err
	}

	return info.DeepCopy(), nil
}

// UpdateDocInfoContent records a live edit of the document.
func (d *DB) UpdateDocInfoContent(
	_ context.Context,
	id types.ID,
	content string,
	authorship string,
	changedAt gotime.Time,
) (*database.DocInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findDocInfo(txn, id)
	if err != nil {
		return nil, err
	}

	updated := info.DeepCopy()
	updated.Content = content
	updated.Authorship = authorship
	updated.LastChangeAt = changedAt
	if err := txn.Insert(tblDocuments, updated); err != nil {
		return nil, fmt.Errorf("update document of %s: %w", id, err)
	}
	txn.Commit()

	return updated.DeepCopy(), nil
}

// UpdateDocInfoSavedAt marks the document as saved at the given time.
func (d *DB) UpdateDocInfoSavedAt(_ context.Context, id types.ID, savedAt gotime.Time) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findDocInfo(txn, id)
	if err != nil {
		return err
	}

	updated := info.DeepCopy()
	updated.SavedAt = savedAt
	if err := txn.Insert(tblDocuments, updated); err != nil {
		return fmt.Errorf("update saved time of %s: %w", id, err)
	}
	txn.Commit()

	return nil
}

// FindDocInfosPendingSave returns the documents whose latest content may not
// be captured by a revision yet.
func (d *DB) FindDocInfosPendingSave(_ context.Context) ([]*database.DocInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblDocuments, "id")
	if err != nil {
		return nil, fmt.Errorf("find documents pending save: %w", err)
	}

	var infos []*database.DocInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		info := raw.(*database.DocInfo)
		if info.IsPendingSave() {
			infos = append(infos, info.DeepCopy())
		}
	}

	return infos, nil
}

// PurgeDocument removes the document and every revision of it.
func (d *DB) PurgeDocument(_ context.Context, id types.ID) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	if _, err := findDocInfo(txn, id); err != nil {
		return err
	}

	if _, err := txn.DeleteAll(tblRevisions, "doc_id", id.String()); err != nil {
		return fmt.Errorf("purge revisions of %s: %w", id, err)
	}
	if _, err := txn.DeleteAll(tblDocuments, "id", id.String()); err != nil {
		return fmt.Errorf("purge document of %s: %w", id, err)
	}
	txn.Commit()

	return nil
}

// CreateRevisionInfo stores a new revision.
func (d *DB) CreateRevisionInfo(
	_ context.Context,
	info *database.RevisionInfo,
) (*database.RevisionInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	created := info.DeepCopy()
	created.ID = newID()
	if err := txn.Insert(tblRevisions, created); err != nil {
		return nil, fmt.Errorf("create revision of %s: %w", info.DocID, err)
	}
	txn.Commit()

	return created.DeepCopy(), nil
}

// FindRevisionInfosByDocID returns the revisions of the document, newest first.
func (d *DB) FindRevisionInfosByDocID(
	_ context.Context,
	docID types.ID,
) ([]*database.RevisionInfo, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblRevisions, "doc_id", docID.String())
	if err != nil {
		return nil, fmt.Errorf("find revisions of %s: %w", docID, err)
	}

	var infos []*database.RevisionInfo
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		infos = append(infos, raw.(*database.RevisionInfo).DeepCopy())
	}
	database.SortNewestFirst(infos)

	return infos, nil
}

// CountRevisionInfosSince returns the number of revisions of the document
// created at or after the given time.
func (d *DB) CountRevisionInfosSince(
	_ context.Context,
	docID types.ID,
	since gotime.Time,
) (int, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblRevisions, "doc_id", docID.String())
	if err != nil {
		return 0, fmt.Errorf("count revisions of %s: %w", docID, err)
	}

	count := 0
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		if !raw.(*database.RevisionInfo).CreatedAt.Before(since) {
			count++
		}
	}

	return count, nil
}

// UpdateRevisionInfoUpdatedAt bumps the update time of the revision.
func (d *DB) UpdateRevisionInfoUpdatedAt(
	_ context.Context,
	id types.ID,
	updatedAt gotime.Time,
) (*database.RevisionInfo, error) {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findRevisionInfo(txn, id)
	if err != nil {
		return nil, err
	}

	updated := info.DeepCopy()
	updated.UpdatedAt = updatedAt
	if err := txn.Insert(tblRevisions, updated); err != nil {
		return nil, fmt.Errorf("update revision of %s: %w", id, err)
	}
	txn.Commit()

	return updated.DeepCopy(), nil
}

// ClearRevisionInfoContent drops the full content of the revision.
func (d *DB) ClearRevisionInfoContent(_ context.Context, id types.ID) error {
	txn := d.db.Txn(true)
	defer txn.Abort()

	info, err := findRevisionInfo(txn, id)
	if err != nil {
		return err
	}

	updated := info.DeepCopy()
	updated.Content = nil
	if err := txn.Insert(tblRevisions, updated); err != nil {
		return fmt.Errorf("clear content of revision %s: %w", id, err)
	}
	txn.Commit()

	return nil
}

func findDocInfo(txn *memdb.Txn, id types.ID) (*database.DocInfo, error) {
	raw, err := txn.First(tblDocuments, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find document of %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("find document of %s: %w", id, database.ErrDocumentNotFound)
	}

	return raw.(*database.DocInfo), nil
}

func findRevisionInfo(txn *memdb.Txn, id types.ID) (*database.RevisionInfo, error) {
	raw, err := txn.First(tblRevisions, "id", id.String())
	if err != nil {
		return nil, fmt.Errorf("find revision of %s: %w", id, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("find revision of %s: %w", id, database.ErrRevisionNotFound)
	}

	return raw.(*database.RevisionInfo), nil
}

func newID() types.ID {
	return types.ID(bson.NewObjectID().Hex())
}
