/*
 * Copyright 2023 The Yorkie Authors. All rights reserved.
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

// Package testcases contains testcases for database. It is used by database
// implementations to test their own implementations with the same testcases.
package testcases

import (
	"context"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/server/backend/database"
)

const (
	dummyDocID = types.ID("000000000000000000000000")
)

// baseTime is truncated to milliseconds, the precision every store keeps.
var baseTime = gotime.Date(2026, 1, 2, 3, 4, 5, 0, gotime.UTC)

// RunDocInfoTest runs the document lifecycle test for the given db.
func RunDocInfoTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("find docInfo test", func(t *testing.T) {
		_, err := db.FindDocInfoByID(ctx, dummyDocID)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)

		docInfo, err := db.CreateDocInfo(ctx, "hello", `{"a":1}`, baseTime)
		assert.NoError(t, err)
		assert.NoError(t, docInfo.ID.Validate())

		found, err := db.FindDocInfoByID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Equal(t, "hello", found.Content)
		assert.Equal(t, `{"a":1}`, found.Authorship)
		assert.True(t, found.CreatedAt.Equal(baseTime))
		assert.True(t, found.LastChangeAt.IsZero())
		assert.True(t, found.SavedAt.IsZero())
	})

	t.Run("update content and saved time test", func(t *testing.T) {
		docInfo, err := db.CreateDocInfo(ctx, "hello", "", baseTime)
		assert.NoError(t, err)

		changedAt := baseTime.Add(gotime.Minute)
		updated, err := db.UpdateDocInfoContent(ctx, docInfo.ID, "hello world", "x", changedAt)
		assert.NoError(t, err)
		assert.Equal(t, "hello world", updated.Content)
		assert.True(t, updated.LastChangeAt.Equal(changedAt))

		savedAt := baseTime.Add(2 * gotime.Minute)
		assert.NoError(t, db.UpdateDocInfoSavedAt(ctx, docInfo.ID, savedAt))

		found, err := db.FindDocInfoByID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Equal(t, "hello world", found.Content)
		assert.Equal(t, "x", found.Authorship)
		assert.True(t, found.SavedAt.Equal(savedAt))

		_, err = db.UpdateDocInfoContent(ctx, dummyDocID, "", "", changedAt)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)
		assert.ErrorIs(t, db.UpdateDocInfoSavedAt(ctx, dummyDocID, savedAt), database.ErrDocumentNotFound)
	})
}

// RunFindDocInfosPendingSaveTest runs the FindDocInfosPendingSave test for
// the given db.
func RunFindDocInfosPendingSaveTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("pending predicate test", func(t *testing.T) {
		// never saved
		neverSaved, err := db.CreateDocInfo(ctx, "a", "", baseTime)
		assert.NoError(t, err)

		// saved, then changed
		changed, err := db.CreateDocInfo(ctx, "b", "", baseTime)
		assert.NoError(t, err)
		assert.NoError(t, db.UpdateDocInfoSavedAt(ctx, changed.ID, baseTime.Add(gotime.Minute)))
		_, err = db.UpdateDocInfoContent(ctx, changed.ID, "bb", "", baseTime.Add(2*gotime.Minute))
		assert.NoError(t, err)

		// saved after the last change
		upToDate, err := db.CreateDocInfo(ctx, "c", "", baseTime)
		assert.NoError(t, err)
		_, err = db.UpdateDocInfoContent(ctx, upToDate.ID, "cc", "", baseTime.Add(gotime.Minute))
		assert.NoError(t, err)
		assert.NoError(t, db.UpdateDocInfoSavedAt(ctx, upToDate.ID, baseTime.Add(2*gotime.Minute)))

		// saved and never changed
		untouched, err := db.CreateDocInfo(ctx, "d", "", baseTime)
		assert.NoError(t, err)
		assert.NoError(t, db.UpdateDocInfoSavedAt(ctx, untouched.ID, baseTime.Add(gotime.Minute)))

		infos, err := db.FindDocInfosPendingSave(ctx)
		assert.NoError(t, err)

		pending := make(map[types.ID]bool)
		for _, info := range infos {
			pending[info.ID] = true
		}
		assert.True(t, pending[neverSaved.ID])
		assert.True(t, pending[changed.ID])
		assert.False(t, pending[upToDate.ID])
		assert.False(t, pending[untouched.ID])
	})
}

// RunPurgeDocumentTest runs the PurgeDocument test for the given db.
func RunPurgeDocumentTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("purge document with revisions test", func(t *testing.T) {
		docInfo, err := db.CreateDocInfo(ctx, "hello", "", baseTime)
		assert.NoError(t, err)

		content := "hello"
		_, err = db.CreateRevisionInfo(ctx, &database.RevisionInfo{
			DocID:       docInfo.ID,
			LastContent: &content,
			Length:      5,
			CreatedAt:   baseTime,
			UpdatedAt:   baseTime,
		})
		assert.NoError(t, err)

		assert.NoError(t, db.PurgeDocument(ctx, docInfo.ID))

		_, err = db.FindDocInfoByID(ctx, docInfo.ID)
		assert.ErrorIs(t, err, database.ErrDocumentNotFound)

		infos, err := db.FindRevisionInfosByDocID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Empty(t, infos)

		assert.ErrorIs(t, db.PurgeDocument(ctx, docInfo.ID), database.ErrDocumentNotFound)
	})
}
