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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	t.Run("validate test", func(t *testing.T) {
		assert.NoError(t, ID("000000000000000000000001").Validate())
		assert.ErrorIs(t, ID("xyz").Validate(), ErrInvalidID)
		assert.ErrorIs(t, ID("0001").Validate(), ErrInvalidID)
	})

	t.Run("bytes round trip test", func(t *testing.T) {
		id := ID("65a4f0c2e1b2c3d4e5f60718")
		b, err := id.Bytes()
		assert.NoError(t, err)
		assert.Equal(t, id, IDFromBytes(b))
	})

	t.Run("join id test", func(t *testing.T) {
		ids := []ID{ID("id1"), ID("id2"), ID("id3")}
		assert.Equal(t, "id1,id2,id3", JoinIDs(ids))
		assert.Equal(t, "", JoinIDs(nil))
	})
}
