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

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/server/backend"
)

// List returns the summaries of the revisions of the document, newest first.
func List(
	ctx context.Context,
	be *backend.Backend,
	docID types.ID,
) ([]*types.RevisionSummary, error) {
	infos, err := be.DB.FindRevisionInfosByDocID(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("list revisions of %s: %w", docID, err)
	}

	summaries := make([]*types.RevisionSummary, 0, len(infos))
	for _, info := range infos {
		summaries = append(summaries, info.ToTypesRevisionSummary())
	}

	return summaries, nil
}
