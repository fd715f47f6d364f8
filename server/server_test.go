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


package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/revisiond/server"
)

func TestRevisiond(t *testing.T) {
	ctx := context.Background()

	conf := server.NewConfig()
	conf.Profiling = nil
	conf.Housekeeping.Interval = "1h"

	r, err := server.New(conf)
	require.NoError(t, err)
	require.NoError(t, r.Start())
	defer func() {
		assert.NoError(t, r.Shutdown(true))
	}()

	createdAt := time.Now().Add(-time.Hour)
	doc, err := r.DB().CreateDocInfo(ctx, "", "", createdAt)
	require.NoError(t, err)
	_, err = r.DB().UpdateDocInfoContent(ctx, doc.ID, "hello", "", createdAt.Add(time.Minute))
	require.NoError(t, err)

	require.NoError(t, r.RunHousekeeping(ctx))

	summaries, err := r.ListRevisions(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 5, summaries[0].Length)

	content, err := r.ReconstructAt(ctx, doc.ID, summaries[0].CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, "hello", content.Content)

	assert.NoError(t, r.Shutdown(true))
	select {
	case <-r.ShutdownCh():
	default:
		t.Fatal("shutdown channel is not closed")
	}
}
