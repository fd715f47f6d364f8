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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/revisiond/server/logging"
)

var (
	showFlags     storeFlags
	showAt        string
	showWithPatch bool
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [document id] --at [time]",
		Short: "Print the content of a document at a past revision",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("document id is required")
			}
			if err := showFlags.validateOutput(); err != nil {
				return err
			}
			docID, err := parseDocID(args[0])
			if err != nil {
				return err
			}
			at, err := time.Parse(time.RFC3339Nano, showAt)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}

			r, err := showFlags.open()
			if err != nil {
				return err
			}
			defer func() {
				if err := r.Shutdown(true); err != nil {
					logging.DefaultLogger().Error(err)
				}
			}()

			content, err := r.ReconstructAt(context.Background(), docID, at)
			if err != nil {
				return err
			}

			if ok, err := showFlags.printStructured(cmd, content); ok {
				return err
			}

			cmd.Print(content.Content)
			if showWithPatch && content.Patch != "" {
				cmd.Printf("\n--- patch\n%s", content.Patch)
			}
			return nil
		},
	}
}

func init() {
	cmd := newShowCmd()
	showFlags.register(cmd)
	cmd.Flags().StringVar(
		&showAt,
		"at",
		"",
		"Time of the revision in RFC 3339 format, as listed by the history command",
	)
	cmd.Flags().BoolVar(
		&showWithPatch,
		"with-patch",
		false,
		"Also print the patch of the revision",
	)
	_ = cmd.MarkFlagRequired("at")
	rootCmd.AddCommand(cmd)
}
