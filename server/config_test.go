/*
 * Copyright 2020 The Yorkie Authors. All rights reserved.
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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorkie-team/revisiond/server"
)

func TestNewConfigFromFile(t *testing.T) {
	t.Run("fail read config file test", func(t *testing.T) {
		conf := server.NewConfig()
		assert.NoError(t, conf.Validate())
		_, err := server.NewConfigFromFile("nowhere.yml")
		assert.Error(t, err)

		assert.Equal(t, server.DefaultProfilingPort, conf.Profiling.Port)
		assert.Equal(t, server.DefaultRevisionCacheSize, conf.Backend.RevisionCacheSize)
		assert.Nil(t, conf.Mongo)
	})

	t.Run("read config file test", func(t *testing.T) {
		conf, err := server.NewConfigFromFile("config.sample.yml")
		require.NoError(t, err)
		assert.NoError(t, conf.Validate())

		assert.Equal(t, server.DefaultProfilingPort, conf.Profiling.Port)

		interval, err := time.ParseDuration(conf.Housekeeping.Interval)
		assert.NoError(t, err)
		assert.Equal(t, server.DefaultHousekeepingInterval, interval)
		assert.Equal(t, server.DefaultHousekeepingMaxSweepsPerRun, conf.Housekeeping.MaxSweepsPerRun)

		assert.Equal(t, "", conf.Backend.WorkerPath)
		assert.Equal(t, []string{"worker"}, conf.Backend.WorkerArgs)
		assert.Equal(t, server.DefaultIdleThreshold, conf.Backend.ParseIdleThreshold())
		assert.Equal(t, server.DefaultMaxSaveInterval, conf.Backend.ParseMaxSaveInterval())
		assert.Equal(t, server.DefaultWorkerRequestTimeout, conf.Backend.ParseWorkerRequestTimeout())

		require.NotNil(t, conf.Mongo)
		connTimeout, err := time.ParseDuration(conf.Mongo.ConnectionTimeout)
		assert.NoError(t, err)
		assert.Equal(t, server.DefaultMongoConnectionTimeout, connTimeout)
		assert.Equal(t, server.DefaultMongoConnectionURI, conf.Mongo.ConnectionURI)
		assert.Equal(t, server.DefaultMongoRevisionDatabase, conf.Mongo.RevisionDatabase)

		pingTimeout, err := time.ParseDuration(conf.Mongo.PingTimeout)
		assert.NoError(t, err)
		assert.Equal(t, server.DefaultMongoPingTimeout, pingTimeout)
	})

	t.Run("fill defaults test", func(t *testing.T) {
		conf, err := server.NewConfigFromFile("testdata/partial.yml")
		require.NoError(t, err)
		assert.NoError(t, conf.Validate())

		assert.Equal(t, "1m", conf.Backend.IdleThreshold)
		assert.Equal(t, server.DefaultMaxSaveInterval.String(), conf.Backend.MaxSaveInterval)
		assert.Equal(t, server.DefaultRevisionCacheSize, conf.Backend.RevisionCacheSize)
		assert.Equal(t, server.DefaultHousekeepingInterval.String(), conf.Housekeeping.Interval)
		assert.Nil(t, conf.Mongo)
	})
}
