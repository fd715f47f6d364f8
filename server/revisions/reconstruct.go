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
	"time"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/pkg/history"
	"github.com/yorkie-team/revisiond/server/backend"
	"github.com/yorkie-team/revisiond/server/backend/database"
	"github.com/yorkie-team/revisiond/server/logging"
)

// ReconstructAt returns the content of the document at the oldest revision
// created at or after target. It fails with database.ErrRevisionNotFound if
// the document has no revisions or none at or after target, and with
// history.ErrReconstruction if the patch chain does not apply.
func ReconstructAt(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
	target time.Time,
) (*types.RevisionContent, error) {
	count, err := be.DB.CountRevisionInfosSince(ctx, docID, target)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %s: %w", docID, err)
	}
	if count == 0 {
		return nil, fmt.Errorf(
			"reconstruct %s at %s: %w",
			docID,
			target.Format(time.RFC3339),
			database.ErrRevisionNotFound,
		)
	}

	infos, err := be.DB.FindRevisionInfosByDocID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("reconstruct %s: %w", docID, err)
	}

	// The chain may have changed between the two reads.
	count = countSince(infos, target)
	if count == 0 {
		return nil, fmt.Errorf("reconstruct %s: %w", docID, database.ErrRevisionNotFound)
	}

	revision := infos[count-1]
	if content, ok := be.RevisionCache.Get(revision.ID); ok {
		be.Metrics.AddReconstruction("hit")
		return copyContent(content), nil
	}

	revisions := make([]history.Revision, 0, len(infos))
	for _, info := range infos {
		revisions = append(revisions, info.ToHistoryRevision())
	}

	replayCtx, cancel := context.WithTimeout(ctx, be.Config.ParseWorkerRequestTimeout())
	defer cancel()
	snapshot, err := be.Worker.GetRevisionAt(replayCtx, revisions, count)
	if err != nil {
		be.Metrics.AddReconstruction("error")
		if errors.Is(err, history.ErrReconstruction) {
			logging.From(ctx).Errorf("revision chain of %s is broken: %v", docID, err)
		}
		return nil, fmt.Errorf("reconstruct %s at revision %s: %w", docID, revision.ID, err)
	}

	content := &types.RevisionContent{
		Content:    snapshot.Content,
		Patch:      snapshot.Patch,
		Authorship: snapshot.Authorship,
	}
	be.RevisionCache.Add(revision.ID, content)
	be.Metrics.AddReconstruction("ok")

	return copyContent(content), nil
}

func countSince(infos []*database.RevisionInfo, target time.Time) int {
	count := 0
	for _, info := range infos {
		if !info.CreatedAt.Before(target) {
			count++
		}
	}
	return count
}

func copyContent(content *types.RevisionContent) *types.RevisionContent {
	clone := *content
	return &clone
}
