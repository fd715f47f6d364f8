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

package history_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/revisiond/pkg/history"
	"github.com/yorkie-team/revisiond/pkg/patch"
)

// buildChain builds the revisions of the given texts the way they are stored:
// newest first, baseline on the oldest, content on the newest only.
func buildChain(texts []string) []history.Revision {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	revisions := make([]history.Revision, len(texts))
	for i, text := range texts {
		rev := history.Revision{
			Length:     patch.Length(text),
			Authorship: fmt.Sprintf("author-%d", i),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if i == 0 {
			baseline := text
			rev.LastContent = &baseline
		} else {
			rev.Patch = patch.Diff(texts[i-1], text).String()
		}
		if i == len(texts)-1 && i > 0 {
			content := text
			rev.Content = &content
		}
		revisions[len(texts)-1-i] = rev
	}
	return revisions
}

func TestStrategy(t *testing.T) {
	tests := []struct {
		total int
		count int
		want  history.Direction
	}{
		{10, 8, history.FromOldest},
		{10, 2, history.FromNewest},
		{10, 5, history.FromNewest},
		{10, 6, history.FromOldest},
		{2, 1, history.FromNewest},
		{3, 1, history.FromNewest},
		{3, 2, history.FromOldest},
		{1, 1, history.FromOldest},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total %d count %d", tt.total, tt.count), func(t *testing.T) {
			assert.Equal(t, tt.want, history.Strategy(tt.total, tt.count))
		})
	}
}

func TestReplay(t *testing.T) {
	texts := []string{"hello"}
	for i := 1; i < 10; i++ {
		prev := texts[i-1]
		switch i % 3 {
		case 0:
			texts = append(texts, prev+fmt.Sprintf("\nline %d", i))
		case 1:
			texts = append(texts, strings.Replace(prev, "hello", "hi", 1)+fmt.Sprintf(" %d", i))
		default:
			texts = append(texts, fmt.Sprintf("header %d\n", i)+prev)
		}
	}
	revisions := buildChain(texts)

	t.Run("every revision is reachable test", func(t *testing.T) {
		for count := 1; count <= len(revisions); count++ {
			snapshot, err := history.Replay(revisions, count)
			require.NoError(t, err)

			idx := len(texts) - count
			assert.Equal(t, texts[idx], snapshot.Content, "count %d", count)
			assert.Equal(t, revisions[count-1].Patch, snapshot.Patch)
			assert.Equal(t, fmt.Sprintf("author-%d", idx), snapshot.Authorship)
			assert.Equal(t, revisions[count-1].Length, patch.Length(snapshot.Content))
		}
	})

	t.Run("chain replays to newest content test", func(t *testing.T) {
		snapshot, err := history.Replay(revisions, 1)
		require.NoError(t, err)
		assert.Equal(t, *revisions[0].Content, snapshot.Content)

		oldest, err := history.Replay(revisions, len(revisions))
		require.NoError(t, err)
		assert.Equal(t, *revisions[len(revisions)-1].LastContent, oldest.Content)
	})

	t.Run("multi-hunk patches undone from newest test", func(t *testing.T) {
		chain := buildChain([]string{"x", "y\n", "ab\nbc\nab", "cab\nbc\naba"})
		require.Equal(t, history.FromNewest, history.Strategy(len(chain), 2))

		snapshot, err := history.Replay(chain, 2)
		require.NoError(t, err)
		assert.Equal(t, "ab\nbc\nab", snapshot.Content)
	})

	t.Run("single revision test", func(t *testing.T) {
		single := buildChain([]string{"only"})
		snapshot, err := history.Replay(single, 1)
		require.NoError(t, err)
		assert.Equal(t, "only", snapshot.Content)
		assert.Equal(t, "", snapshot.Patch)
	})

	t.Run("out of range target test", func(t *testing.T) {
		_, err := history.Replay(revisions, 0)
		assert.ErrorIs(t, err, history.ErrReconstruction)

		_, err = history.Replay(revisions, len(revisions)+1)
		assert.ErrorIs(t, err, history.ErrReconstruction)

		_, err = history.Replay(nil, 1)
		assert.ErrorIs(t, err, history.ErrReconstruction)
	})

	t.Run("corrupt chain test", func(t *testing.T) {
		corrupt := buildChain(texts)
		tampered := "tampered content that matches nothing"
		corrupt[0].Content = &tampered

		_, err := history.Replay(corrupt, 2)
		assert.ErrorIs(t, err, history.ErrReconstruction)
		assert.ErrorIs(t, err, patch.ErrPatchApply)

		corrupt = buildChain(texts)
		corrupt[len(corrupt)-2].Patch = "not a patch"
		_, err = history.Replay(corrupt, len(corrupt)-1)
		assert.ErrorIs(t, err, history.ErrReconstruction)
		assert.ErrorIs(t, err, patch.ErrInvalidPatch)
	})
}

func TestReplayRandomChains(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	words := []string{"alpha", "beta", "gamma", "\n", " ", "delta\n"}

	for round := 0; round < 50; round++ {
		texts := []string{""}
		for i := 0; i < 8; i++ {
			parts := strings.SplitAfter(texts[i], " ")
			for j := range parts {
				switch r.Intn(4) {
				case 0:
					parts[j] = words[r.Intn(len(words))] + parts[j]
				case 1:
					parts[j] = ""
				}
			}
			texts = append(texts, strings.Join(parts, "")+words[r.Intn(len(words))])
		}

		revisions := buildChain(texts)
		for count := 1; count <= len(revisions); count++ {
			snapshot, err := history.Replay(revisions, count)
			require.NoError(t, err, "round %d count %d", round, count)
			require.Equal(t, texts[len(texts)-count], snapshot.Content)
		}
	}
}
