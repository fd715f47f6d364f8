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
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yorkie-team/revisiond/server/logging"
)

var historyFlags storeFlags

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [document id]",
		Short: "Show the revisions of a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("document id is required")
			}
			if err := historyFlags.validateOutput(); err != nil {
				return err
			}
			docID, err := parseDocID(args[0])
			if err != nil {
				return err
			}

			r, err := historyFlags.open()
			if err != nil {
				return err
			}
			defer func() {
				if err := r.Shutdown(true); err != nil {
					logging.DefaultLogger().Error(err)
				}
			}()

			summaries, err := r.ListRevisions(context.Background(), docID)
			if err != nil {
				return err
			}

			if ok, err := historyFlags.printStructured(cmd, summaries); ok {
				return err
			}

			tw := table.NewWriter()
			tw.Style().Options.DrawBorder = false
			tw.Style().Options.SeparateColumns = false
			tw.Style().Options.SeparateFooter = false
			tw.Style().Options.SeparateHeader = false
			tw.Style().Options.SeparateRows = false
			tw.AppendHeader(table.Row{
				"ID",
				"TIME",
				"LENGTH",
			})
			for _, summary := range summaries {
				tw.AppendRow(table.Row{
					summary.ID,
					summary.CreatedAt.Format(time.RFC3339Nano),
					summary.Length,
				})
			}
			cmd.Printf("%s\n", tw.Render())
			return nil
		},
	}
}

func init() {
	cmd := newHistoryCmd()
	historyFlags.register(cmd)
	rootCmd.AddCommand(cmd)
}
