/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

package mongo

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/yorkie-team/revisiond/api/types"
	"github.com/yorkie-team/revisiond/server/backend/database"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()

	t.Run("types.ID is stored as ObjectID test", func(t *testing.T) {
		id := types.ID(bson.NewObjectID().Hex())
		content := "hello"
		info := &database.RevisionInfo{
			ID:        id,
			DocID:     id,
			Content:   &content,
			CreatedAt: time.UnixMilli(time.Now().UnixMilli()).UTC(),
		}

		buf := &bytes.Buffer{}
		enc := bson.NewEncoder(bson.NewDocumentWriter(buf))
		enc.SetRegistry(registry)
		assert.NoError(t, enc.Encode(info))

		raw := bson.Raw(buf.Bytes())
		objectID, ok := raw.Lookup("_id").ObjectIDOK()
		assert.True(t, ok)
		assert.Equal(t, id.String(), objectID.Hex())

		dec := bson.NewDecoder(bson.NewDocumentReader(bytes.NewReader(buf.Bytes())))
		dec.SetRegistry(registry)
		decoded := &database.RevisionInfo{}
		assert.NoError(t, dec.Decode(decoded))
		assert.Equal(t, id, decoded.ID)
		assert.Equal(t, id, decoded.DocID)
		assert.Equal(t, content, *decoded.Content)
		assert.Nil(t, decoded.LastContent)
	})

	t.Run("invalid ID test", func(t *testing.T) {
		buf := &bytes.Buffer{}
		enc := bson.NewEncoder(bson.NewDocumentWriter(buf))
		enc.SetRegistry(registry)
		assert.Error(t, enc.Encode(&database.RevisionInfo{ID: "invalid"}))
	})
}
