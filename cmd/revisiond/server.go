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


package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/revisiond/server"
	"github.com/yorkie-team/revisiond/server/backend/database/mongo"
	"github.com/yorkie-team/revisiond/server/logging"
)

var (
	gracefulTimeout = 10 * time.Second
)

var (
	flagConfPath      string
	flagLogLevel      string
	flagWorkerProcess bool

	housekeepingInterval time.Duration
	workerRequestTimeout time.Duration
	idleThreshold        time.Duration
	maxSaveInterval      time.Duration

	mongoConnectionURI     string
	mongoConnectionTimeout time.Duration
	mongoRevisionDatabase  string
	mongoPingTimeout       time.Duration

	conf = server.NewConfig()
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [options]",
		Short: "Start revisiond server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf.Housekeeping.Interval = housekeepingInterval.String()

			conf.Backend.WorkerRequestTimeout = workerRequestTimeout.String()
			conf.Backend.IdleThreshold = idleThreshold.String()
			conf.Backend.MaxSaveInterval = maxSaveInterval.String()

			if flagWorkerProcess {
				path, err := os.Executable()
				if err != nil {
					return fmt.Errorf("find worker executable: %w", err)
				}
				conf.Backend.WorkerPath = path
				conf.Backend.WorkerArgs = []string{"worker"}
			}

			if mongoConnectionURI != "" {
				conf.Mongo = &mongo.Config{
					ConnectionURI:     mongoConnectionURI,
					ConnectionTimeout: mongoConnectionTimeout.String(),
					RevisionDatabase:  mongoRevisionDatabase,
					PingTimeout:       mongoPingTimeout.String(),
				}
			}

			// If config file is given, command-line arguments will be overwritten.
			if flagConfPath != "" {
				parsed, err := server.NewConfigFromFile(flagConfPath)
				if err != nil {
					return err
				}
				conf = parsed
			}

			if err := logging.SetLogLevel(flagLogLevel); err != nil {
				return err
			}

			r, err := server.New(conf)
			if err != nil {
				return err
			}

			if err := r.Start(); err != nil {
				return err
			}

			if code := handleSignal(r); code != 0 {
				return fmt.Errorf("exit code: %d", code)
			}

			return nil
		},
	}
}

func handleSignal(r *server.Revisiond) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	var sig os.Signal
	select {
	case s := <-sigCh:
		sig = s
	case <-r.ShutdownCh():
		// revisiond is already shutdown
		return 0
	}

	graceful := false
	if sig == syscall.SIGINT || sig == syscall.SIGTERM {
		graceful = true
	}

	gracefulCh := make(chan struct{})
	go func() {
		if err := r.Shutdown(graceful); err != nil {
			logging.DefaultLogger().Error(err)
			return
		}
		close(gracefulCh)
	}()

	select {
	case <-sigCh:
		return 1
	case <-time.After(gracefulTimeout):
		return 1
	case <-gracefulCh:
		return 0
	}
}

func init() {
	cmd := newServerCmd()
	cmd.Flags().StringVarP(
		&flagConfPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&flagLogLevel,
		"log-level",
		"l",
		"info",
		"Log level: debug, info, warn, error, panic, fatal",
	)
	cmd.Flags().IntVar(
		&conf.Profiling.Port,
		"profiling-port",
		server.DefaultProfilingPort,
		"Profiling port",
	)
	cmd.Flags().BoolVar(
		&conf.Profiling.EnablePprof,
		"enable-pprof",
		false,
		"Enable runtime profiling data via HTTP server.",
	)
	cmd.Flags().DurationVar(
		&housekeepingInterval,
		"housekeeping-interval",
		server.DefaultHousekeepingInterval,
		"housekeeping interval between housekeeping runs",
	)
	cmd.Flags().IntVar(
		&conf.Housekeeping.MaxSweepsPerRun,
		"housekeeping-max-sweeps-per-run",
		server.DefaultHousekeepingMaxSweepsPerRun,
		"maximum number of revision sweeps in a single housekeeping run",
	)
	cmd.Flags().StringVar(
		&mongoConnectionURI,
		"mongo-connection-uri",
		"",
		"MongoDB's connection URI",
	)
	cmd.Flags().DurationVar(
		&mongoConnectionTimeout,
		"mongo-connection-timeout",
		server.DefaultMongoConnectionTimeout,
		"Mongo DB's connection timeout",
	)
	cmd.Flags().StringVar(
		&mongoRevisionDatabase,
		"mongo-database",
		server.DefaultMongoRevisionDatabase,
		"revisiond's database name in MongoDB",
	)
	cmd.Flags().DurationVar(
		&mongoPingTimeout,
		"mongo-ping-timeout",
		server.DefaultMongoPingTimeout,
		"Mongo DB's ping timeout",
	)
	cmd.Flags().BoolVar(
		&flagWorkerProcess,
		"worker-process",
		false,
		"Run the patch worker as a child process instead of inside the server.",
	)
	cmd.Flags().DurationVar(
		&workerRequestTimeout,
		"worker-request-timeout",
		server.DefaultWorkerRequestTimeout,
		"Time to wait for a reply of the patch worker.",
	)
	cmd.Flags().DurationVar(
		&idleThreshold,
		"idle-threshold",
		server.DefaultIdleThreshold,
		"Time a document stays unchanged before its changes are saved as a revision.",
	)
	cmd.Flags().DurationVar(
		&maxSaveInterval,
		"max-save-interval",
		server.DefaultMaxSaveInterval,
		"Time a document may keep changing before a revision is saved anyway.",
	)
	cmd.Flags().IntVar(
		&conf.Backend.RevisionCacheSize,
		"revision-cache-size",
		server.DefaultRevisionCacheSize,
		"The number of reconstructed revisions to keep in memory.",
	)
	cmd.Flags().StringVar(
		&conf.Backend.Hostname,
		"hostname",
		server.DefaultHostname,
		"revisiond server hostname",
	)

	rootCmd.AddCommand(cmd)
}
