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

// Package history rebuilds the content of a document at a past revision by
// replaying the patch chain of its revisions.
package history

import (
	"fmt"
	"time"

	"github.com/yorkie-team/revisiond/pkg/errors"
	"github.com/yorkie-team/revisiond/pkg/patch"
)

// ErrReconstruction is returned when the patch chain cannot be replayed.
var ErrReconstruction = errors.Internal("cannot reconstruct revision").WithCode("ErrReconstruction")

// Direction is the end of the chain a replay starts from.
type Direction int

const (
	// FromNewest starts from the newest revision's content and undoes the
	// patches of every revision newer than the target.
	FromNewest Direction = iota

	// FromOldest starts from the oldest revision's baseline and applies the
	// patches of every revision up to and including the target.
	FromOldest
)

// String returns the name of the direction.
func (d Direction) String() string {
	if d == FromOldest {
		return "from-oldest"
	}
	return "from-newest"
}

// Revision is the replay view of a stored revision.
type Revision struct {
	Patch       string    `json:"patch,omitempty"`
	Content     *string   `json:"content,omitempty"`
	LastContent *string   `json:"lastContent,omitempty"`
	Authorship  string    `json:"authorship,omitempty"`
	Length      int       `json:"length"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Resolved returns the full text stored on the revision: its content if it
// has not been compacted, its baseline otherwise.
func (r Revision) Resolved() string {
	if r.Content != nil {
		return *r.Content
	}
	if r.LastContent != nil {
		return *r.LastContent
	}
	return ""
}

// Snapshot is the content of a document at a revision.
type Snapshot struct {
	Content    string `json:"content"`
	Patch      string `json:"patch"`
	Authorship string `json:"authorship"`
}

// Strategy returns the direction that touches fewer patches to reach the
// target, where count is the number of revisions created at or after the
// target time and total is the length of the chain.
func Strategy(total, count int) Direction {
	if count <= total/2 {
		return FromNewest
	}
	return FromOldest
}

// Replay rebuilds the content of revisions[count-1]. revisions are ordered
// newest first.
func Replay(revisions []Revision, count int) (*Snapshot, error) {
	if len(revisions) == 0 || count <= 0 || count > len(revisions) {
		return nil, fmt.Errorf("target %d of %d revisions: %w", count, len(revisions), ErrReconstruction)
	}

	var content string
	var err error
	switch Strategy(len(revisions), count) {
	case FromNewest:
		content, err = replayFromNewest(revisions, count)
	case FromOldest:
		content, err = replayFromOldest(revisions, count)
	}
	if err != nil {
		return nil, err
	}

	target := revisions[count-1]
	return &Snapshot{
		Content:    content,
		Patch:      target.Patch,
		Authorship: target.Authorship,
	}, nil
}

func replayFromNewest(revisions []Revision, count int) (string, error) {
	content := revisions[0].Resolved()
	for i := 0; i < count-1; i++ {
		next, err := applyText(revisions[i].Patch, content, patch.Reverse)
		if err != nil {
			return "", fmt.Errorf("undo revision %d of %d: %w", i, len(revisions), err)
		}
		content = next
	}

	return content, nil
}

func replayFromOldest(revisions []Revision, count int) (string, error) {
	last := len(revisions) - 1
	content := revisions[last].Resolved()
	for i := last - 1; i >= count-1; i-- {
		next, err := applyText(revisions[i].Patch, content, patch.Forward)
		if err != nil {
			return "", fmt.Errorf("redo revision %d of %d: %w", i, len(revisions), err)
		}
		content = next
	}

	return content, nil
}

func applyText(text, content string, dir patch.Direction) (string, error) {
	p, err := patch.Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReconstruction, err)
	}

	result, err := patch.Apply(p, content, dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReconstruction, err)
	}

	return result, nil
}
