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

package testcases

import (
	"context"
	"testing"
	gotime "time"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/server/backend/database"
)

func strPtr(s string) *string {
	return &s
}

func createChain(
	t *testing.T,
	db database.Database,
	docID types.ID,
	contents ...string,
) []*database.RevisionInfo {
	ctx := context.Background()

	var infos []*database.RevisionInfo
	for i, content := range contents {
		createdAt := baseTime.Add(gotime.Duration(i) * gotime.Minute)
		info := &database.RevisionInfo{
			DocID:     docID,
			Length:    len(content),
			Content:   strPtr(content),
			Patch:     "p" + content,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		if i == 0 {
			info.Content = nil
			info.LastContent = strPtr(content)
			info.Patch = ""
		}

		created, err := db.CreateRevisionInfo(ctx, info)
		assert.NoError(t, err)
		infos = append(infos, created)
	}

	return infos
}

// RunRevisionInfoTest runs the revision lifecycle test for the given db.
func RunRevisionInfoTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("create and find revisions newest first test", func(t *testing.T) {
		docInfo, err := db.CreateDocInfo(ctx, "", "", baseTime)
		assert.NoError(t, err)

		infos, err := db.FindRevisionInfosByDocID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Empty(t, infos)

		created := createChain(t, db, docInfo.ID, "a", "ab", "abc")
		for _, info := range created {
			assert.NoError(t, info.ID.Validate())
		}

		infos, err = db.FindRevisionInfosByDocID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Len(t, infos, 3)
		assert.Equal(t, created[2].ID, infos[0].ID)
		assert.Equal(t, created[1].ID, infos[1].ID)
		assert.Equal(t, created[0].ID, infos[2].ID)

		oldest := infos[2]
		assert.Nil(t, oldest.Content)
		assert.Equal(t, "a", *oldest.LastContent)
		assert.Empty(t, oldest.Patch)
		assert.Equal(t, "abc", *infos[0].Content)
		assert.Equal(t, "pabc", infos[0].Patch)
	})

	t.Run("revisions of other documents are not found test", func(t *testing.T) {
		docA, err := db.CreateDocInfo(ctx, "", "", baseTime)
		assert.NoError(t, err)
		docB, err := db.CreateDocInfo(ctx, "", "", baseTime)
		assert.NoError(t, err)

		createChain(t, db, docA.ID, "a", "aa")
		createChain(t, db, docB.ID, "b")

		infos, err := db.FindRevisionInfosByDocID(ctx, docB.ID)
		assert.NoError(t, err)
		assert.Len(t, infos, 1)
		assert.Equal(t, docB.ID, infos[0].DocID)
	})

	t.Run("update time and clear content test", func(t *testing.T) {
		docInfo, err := db.CreateDocInfo(ctx, "", "", baseTime)
		assert.NoError(t, err)
		created := createChain(t, db, docInfo.ID, "a", "ab")

		updatedAt := baseTime.Add(gotime.Hour)
		updated, err := db.UpdateRevisionInfoUpdatedAt(ctx, created[1].ID, updatedAt)
		assert.NoError(t, err)
		assert.True(t, updated.UpdatedAt.Equal(updatedAt))
		assert.True(t, updated.CreatedAt.Equal(created[1].CreatedAt))

		assert.NoError(t, db.ClearRevisionInfoContent(ctx, created[1].ID))
		infos, err := db.FindRevisionInfosByDocID(ctx, docInfo.ID)
		assert.NoError(t, err)
		assert.Nil(t, infos[0].Content)
		assert.Equal(t, "pab", infos[0].Patch)

		_, err = db.UpdateRevisionInfoUpdatedAt(ctx, dummyDocID, updatedAt)
		assert.ErrorIs(t, err, database.ErrRevisionNotFound)
		assert.ErrorIs(t, db.ClearRevisionInfoContent(ctx, dummyDocID), database.ErrRevisionNotFound)
	})
}

// RunCountRevisionInfosSinceTest runs the CountRevisionInfosSince test for
// the given db.
func RunCountRevisionInfosSinceTest(t *testing.T, db database.Database) {
	ctx := context.Background()

	t.Run("count is inclusive of the given time test", func(t *testing.T) {
		docInfo, err := db.CreateDocInfo(ctx, "", "", baseTime)
		assert.NoError(t, err)
		createChain(t, db, docInfo.ID, "a", "ab", "abc", "abcd")

		for _, tc := range []struct {
			since gotime.Time
			count int
		}{
			{baseTime.Add(-gotime.Second), 4},
			{baseTime, 4},
			{baseTime.Add(gotime.Second), 3},
			{baseTime.Add(2 * gotime.Minute), 2},
			{baseTime.Add(3 * gotime.Minute), 1},
			{baseTime.Add(4 * gotime.Minute), 0},
		} {
			count, err := db.CountRevisionInfosSince(ctx, docInfo.ID, tc.since)
			assert.NoError(t, err)
			assert.Equal(t, tc.count, count, tc.since)
		}
	})
}
