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

// Package patch computes, encodes and applies reversible text patches. It is
// a thin layer over diff-match-patch that makes patch application strict: a
// hunk whose context does not match the base text exactly is an error rather
// than a fuzzy match.
package patch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/yorkie-team/revisiond/pkg/errors"
)

var (
	// ErrPatchApply is returned when a patch does not apply to the given text.
	ErrPatchApply = errors.Internal("patch does not apply").WithCode("ErrPatchApply")

	// ErrInvalidPatch is returned when a patch text cannot be parsed.
	ErrInvalidPatch = errors.InvalidArgument("invalid patch text").WithCode("ErrInvalidPatch")
)

// hunkHeader matches the header line of a hunk, e.g. "@@ -1,5 +1,11 @@".
var hunkHeader = regexp.MustCompile(`^@@ -(\d+(?:,\d+)?) \+(\d+(?:,\d+)?) @@$`)

// Direction is the direction in which a patch is applied.
type Direction int

const (
	// Forward applies the patch as authored: pre-image to post-image.
	Forward Direction = iota

	// Reverse applies the patch with insertions and deletions swapped:
	// post-image to pre-image.
	Reverse
)

// String returns the name of the direction.
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Patch is an edit script between two texts, kept in its serialized form.
// The zero value is the empty patch.
type Patch struct {
	text string
}

// newDMP returns a diff-match-patch instance configured for deterministic
// diffs and exact patch application.
func newDMP() *diffmatchpatch.DiffMatchPatch {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	dmp.MatchThreshold = 0
	dmp.PatchDeleteThreshold = 0
	return dmp
}

// Diff computes the patch that turns oldText into newText.
func Diff(oldText, newText string) Patch {
	if oldText == newText {
		return Patch{}
	}

	// Line mode is off: its line hashing breaks PatchMake on multi-line
	// texts in this version of go-diff.
	dmp := newDMP()
	diffs := dmp.DiffMain(oldText, newText, false)
	hunks := dmp.PatchMake(oldText, diffs)
	return Patch{text: dmp.PatchToText(hunks)}
}

// Parse parses the serialized form of a patch.
func Parse(text string) (Patch, error) {
	if text == "" {
		return Patch{}, nil
	}

	if _, err := newDMP().PatchFromText(text); err != nil {
		return Patch{}, fmt.Errorf("parse %q: %s: %w", abbreviate(text), err, ErrInvalidPatch)
	}

	return Patch{text: text}, nil
}

// String returns the serialized form of the patch.
func (p Patch) String() string {
	return p.text
}

// Empty returns true if the patch contains no edits.
func (p Patch) Empty() bool {
	return p.text == ""
}

// Hunks returns the number of hunks in the patch.
func (p Patch) Hunks() int {
	count := 0
	for _, line := range strings.Split(p.text, "\n") {
		if strings.HasPrefix(line, "@@") {
			count++
		}
	}
	return count
}

// Reverse returns the patch that undoes p. Its insertions become deletions
// and vice versa. Hunk starts are written in the coordinates of the text
// with the earlier hunks already applied, so every reversed hunk is moved
// back by the net length change of the hunks before it.
func (p Patch) Reverse() Patch {
	if p.Empty() {
		return p
	}

	delta := 0
	lines := strings.Split(p.text, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}

		switch line[0] {
		case '@':
			m := hunkHeader.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			start1, length1 := parseRange(m[1])
			start2, length2 := parseRange(m[2])
			lines[i] = "@@ -" + formatRange(start2-delta, length2) + " +" + formatRange(start1-delta, length1) + " @@"
			delta += length2 - length1
		case '+':
			lines[i] = "-" + line[1:]
		case '-':
			lines[i] = "+" + line[1:]
		}
	}

	return Patch{text: strings.Join(lines, "\n")}
}

// parseRange parses a hunk range as written by diff-match-patch into a
// zero-based start and a length.
func parseRange(r string) (int, int) {
	startText, lengthText, found := strings.Cut(r, ",")
	start, _ := strconv.Atoi(startText)
	if !found {
		return start - 1, 1
	}

	length, _ := strconv.Atoi(lengthText)
	if length == 0 {
		return start, 0
	}
	return start - 1, length
}

// formatRange is the inverse of parseRange.
func formatRange(start, length int) string {
	switch length {
	case 0:
		return strconv.Itoa(start) + ",0"
	case 1:
		return strconv.Itoa(start + 1)
	default:
		return strconv.Itoa(start+1) + "," + strconv.Itoa(length)
	}
}

// Apply applies the patch to text in the given direction.
func Apply(p Patch, text string, dir Direction) (string, error) {
	if p.Empty() {
		return text, nil
	}
	if dir == Reverse {
		p = p.Reverse()
	}

	dmp := newDMP()
	hunks, err := dmp.PatchFromText(p.text)
	if err != nil {
		return "", fmt.Errorf("parse %q: %s: %w", abbreviate(p.text), err, ErrInvalidPatch)
	}

	result, applied := dmp.PatchApply(hunks, text)
	for i, ok := range applied {
		if !ok {
			return "", fmt.Errorf("apply hunk %d of %d %s: %w", i+1, len(applied), dir, ErrPatchApply)
		}
	}

	return result, nil
}

// Sanitize strips NUL bytes, which many text column types cannot store, and
// replaces invalid UTF-8 sequences with U+FFFD. Patches cross a JSON
// boundary, so they are only valid against text that survives encoding.
func Sanitize(text string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(text, "\x00", ""), "\uFFFD")
}

// Length returns the length of text in characters.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

func abbreviate(text string) string {
	const max = 32
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
