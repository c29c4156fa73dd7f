// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/storage"
)

// =============================================================================
// CONVERT COMMAND
// =============================================================================

func (a *App) convertCommand() *cobra.Command {
	var (
		file  string
		save  bool
		title string
	)
	cmd := &cobra.Command{
		Use:   "convert [text...]",
		Short: "Convert plain text into a document with mentions",
		Long: `Convert plain text into a document, turning every trigger occurrence
(@John, #urgent, due:tomorrow) into a mention. Each line becomes a
paragraph.

Text is taken from the arguments, from --file, or from stdin. The
document is printed as JSON, or saved with --save.

Examples:
  mentions convert "Ping @Anna about #budget"
  mentions convert --file notes.txt --save --title Notes
  git log --oneline | mentions convert --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) > 0 {
				text = strings.Join(args, " ")
			} else {
				data, err := readInput(cmd, file)
				if err != nil {
					return err
				}
				text = strings.TrimRight(string(data), "\r\n")
			}

			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "convert", func() (interface{}, error) {
				return a.runConvert(cmd, text, save, title)
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from file ('-' for stdin)")
	cmd.Flags().BoolVar(&save, "save", false, "save the result as a document")
	cmd.Flags().StringVar(&title, "title", "", "title of the saved document")
	return cmd
}

func (a *App) runConvert(cmd *cobra.Command, text string, save bool, title string) (interface{}, error) {
	ed, err := a.newEditor()
	if err != nil {
		return nil, err
	}
	m, err := a.newMatcher()
	if err != nil {
		return nil, err
	}

	state, err := ed.Build(func(tx *document.Tx) error {
		_, err := mention.AppendText(tx, m, text)
		return err
	})
	if err != nil {
		return nil, NewCommandError("convert", "build", "could not build document", err)
	}

	raw, err := document.MarshalStateIndent(state)
	if err != nil {
		return nil, err
	}

	var mentions []string
	for _, n := range mention.Collect(state, "") {
		mentions = append(mentions, n.TextContent())
	}
	a.log.Debug("text converted", logging.F("mentions", len(mentions)))

	out := cmd.OutOrStdout()
	if save {
		store, err := a.openStore()
		if err != nil {
			return nil, err
		}
		doc, err := storage.FromState(state, title)
		if err != nil {
			return nil, err
		}
		id, err := store.Save(doc)
		if err != nil {
			return nil, NewCommandError("convert", "save", "could not save document", err)
		}
		if !a.jsonOut {
			fmt.Fprintf(out, "%s saved %s (%d mentions)\n", RenderStatus("ok"), id, len(mentions))
		}
		return ImportData{ID: id, Title: doc.Title, Mentions: nonNil(mentions)}, nil
	}

	if !a.jsonOut {
		fmt.Fprintln(out, string(raw))
	}
	return ConvertData{Mentions: nonNil(mentions), State: json.RawMessage(raw)}, nil
}
