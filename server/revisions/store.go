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
	"fmt"
	"time"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/pkg/patch"
	"github.com/yorkie-team/revisiond/server/backend"
	"github.com/yorkie-team/revisiond/server/backend/database"
	"github.com/yorkie-team/revisiond/server/logging"
)

// SaveDue captures the current content of the document in its revision
// chain and marks the document saved.
//
//   - The first save creates a revision whose baseline is the content.
//   - A save without textual change only bumps the update time of the
//     newest revision.
//   - Any other save creates a revision holding the patch from the newest
//     revision and clears the content of the revision it supersedes.
//
// Saves of the same document are serialized.
func SaveDue(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
) (*database.RevisionInfo, error) {
	key := docID.String()
	be.Locker.Lock(key)
	defer func() {
		if err := be.Locker.Unlock(key); err != nil {
			logging.From(ctx).Error(err)
		}
	}()

	doc, err := be.DB.FindDocInfoByID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", docID, err)
	}

	infos, err := be.DB.FindRevisionInfosByDocID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", docID, err)
	}

	start := time.Now()
	content := patch.Sanitize(doc.Content)

	var revision *database.RevisionInfo
	if len(infos) == 0 {
		revision, err = createFirst(ctx, be, doc, content)
	} else {
		revision, err = createNext(ctx, be, doc, infos[0], content)
	}
	if err != nil {
		return nil, err
	}

	if err := be.DB.UpdateDocInfoSavedAt(ctx, docID, revision.UpdatedAt); err != nil {
		return nil, fmt.Errorf("mark %s saved: %w", docID, err)
	}

	logging.From(ctx).Debugf(
		"saved %s as revision %s, %s",
		docID,
		revision.ID,
		time.Since(start),
	)

	return revision, nil
}

func createFirst(
	ctx context.Context,
	be *backend.Backend,
	doc *database.DocInfo,
	content string,
) (*database.RevisionInfo, error) {
	now := be.Clock.Now()
	revision, err := be.DB.CreateRevisionInfo(ctx, &database.RevisionInfo{
		DocID:       doc.ID,
		Length:      patch.Length(content),
		LastContent: &content,
		Authorship:  doc.Authorship,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create first revision of %s: %w", doc.ID, err)
	}

	be.Metrics.AddRevisionCreated()
	return revision, nil
}

func createNext(
	ctx context.Context,
	be *backend.Backend,
	doc *database.DocInfo,
	latest *database.RevisionInfo,
	content string,
) (*database.RevisionInfo, error) {
	patchCtx, cancel := context.WithTimeout(ctx, be.Config.ParseWorkerRequestTimeout())
	text, err := be.Worker.CreatePatch(patchCtx, latest.ResolvedContent(), content)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("diff %s against revision %s: %w", doc.ID, latest.ID, err)
	}

	now := be.Clock.Now()
	if text == "" {
		revision, err := be.DB.UpdateRevisionInfoUpdatedAt(ctx, latest.ID, now)
		if err != nil {
			return nil, fmt.Errorf("touch revision %s: %w", latest.ID, err)
		}

		be.Metrics.AddRevisionCoalesced()
		return revision, nil
	}

	revision, err := be.DB.CreateRevisionInfo(ctx, &database.RevisionInfo{
		DocID:      doc.ID,
		Length:     patch.Length(content),
		Content:    &content,
		Patch:      patch.Sanitize(text),
		Authorship: doc.Authorship,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("create revision of %s: %w", doc.ID, err)
	}
	be.Metrics.AddRevisionCreated()

	if latest.Content != nil {
		if err := be.DB.ClearRevisionInfoContent(ctx, latest.ID); err != nil {
			return nil, fmt.Errorf("compact revision %s: %w", latest.ID, err)
		}
	}

	return revision, nil
}
