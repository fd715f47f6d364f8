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

package types

import (
	"time"
)

// RevisionSummary is the listing view of a revision: when it was taken and
// how long the document was at that point.
type RevisionSummary struct {
	// ID is the unique identifier of the revision.
	ID ID `json:"id"`

	// Length is the length of the document content in characters.
	Length int `json:"length"`

	// CreatedAt is the time when this revision was created. It is the time a
	// caller passes back to reconstruct the content of this revision.
	CreatedAt time.Time `json:"time"`
}

// RevisionContent is the content of a document rebuilt at a past revision.
type RevisionContent struct {
	// Content is the full text of the document at the revision.
	Content string `json:"content"`

	// Patch is the serialized patch of the revision itself, from the content of
	// the previous revision to Content. It is empty for the first revision.
	Patch string `json:"patch"`

	// Authorship is the opaque attribution payload stored with the revision.
	Authorship string `json:"authorship"`
}
