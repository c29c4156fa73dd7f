// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/storage"
)

// =============================================================================
// DOCUMENTS COMMAND
// =============================================================================

func (a *App) documentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "List, search and delete saved documents",
	}
	cmd.AddCommand(
		a.documentsListCommand(),
		a.documentsSearchCommand(),
		a.documentsShowCommand(),
		a.documentsDeleteCommand(),
	)
	return cmd
}

func (a *App) documentsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved documents, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "documents list", func() (interface{}, error) {
				store, err := a.openStore()
				if err != nil {
					return nil, err
				}
				docs, err := store.List()
				if err != nil {
					return nil, err
				}
				return a.printDocuments(cmd, docs), nil
			})
		},
	}
}

func (a *App) documentsSearchCommand() *cobra.Command {
	var byMention bool
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search documents by title and text, or by mention",
		Long: `Search saved documents. The query matches titles and text, case
insensitively. With --mention it matches mentions instead: "@anna"
finds documents mentioning @Anna, "anna" finds any trigger.

Examples:
  mentions documents search budget
  mentions documents search --mention "#urgent"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "documents search", func() (interface{}, error) {
				store, err := a.openStore()
				if err != nil {
					return nil, err
				}
				var docs []storage.DocumentMeta
				if byMention {
					docs, err = store.FindByMention(query)
				} else {
					docs, err = store.Search(query)
				}
				if err != nil {
					return nil, err
				}
				return a.printDocuments(cmd, docs), nil
			})
		},
	}
	cmd.Flags().BoolVarP(&byMention, "mention", "m", false, "match mentions instead of text")
	return cmd
}

func (a *App) documentsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a document's details and mentions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "documents show", func() (interface{}, error) {
				store, err := a.openStore()
				if err != nil {
					return nil, err
				}
				doc, err := store.Load(args[0])
				if err != nil {
					if errors.Is(err, storage.ErrDocumentNotFound) {
						return nil, NewNotFoundError("document", args[0])
					}
					return nil, err
				}
				if !a.jsonOut {
					out := cmd.OutOrStdout()
					fmt.Fprintln(out, TitleStyle.Render(doc.Title))
					fmt.Fprintln(out, RenderField("ID", doc.ID))
					fmt.Fprintln(out, RenderField("Created", formatTime(doc.CreatedAt)))
					fmt.Fprintln(out, RenderField("Updated", formatTime(doc.UpdatedAt)))
					fmt.Fprintln(out, RenderLabel("Mentions")+mentionList(doc.Mentions))
					fmt.Fprintln(out, RenderField("Preview", doc.Preview))
				}
				return doc.Meta(), nil
			})
		},
	}
}

func (a *App) documentsDeleteCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete saved documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return NewValidationError("id", "", "give at least one document id, or --all")
			}
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "documents delete", func() (interface{}, error) {
				store, err := a.openStore()
				if err != nil {
					return nil, err
				}
				if all {
					if err := store.Clear(); err != nil {
						return nil, err
					}
					a.log.Info("all documents deleted")
					if !a.jsonOut {
						fmt.Fprintf(cmd.OutOrStdout(), "%s deleted all documents\n", RenderStatus("ok"))
					}
					return map[string]bool{"cleared": true}, nil
				}

				deleted := make([]string, 0, len(args))
				for _, id := range args {
					if err := store.Delete(id); err != nil {
						if errors.Is(err, storage.ErrDocumentNotFound) {
							return nil, NewNotFoundError("document", id)
						}
						return nil, err
					}
					a.log.Info("document deleted", logging.F("id", id))
					deleted = append(deleted, id)
					if !a.jsonOut {
						fmt.Fprintf(cmd.OutOrStdout(), "%s deleted %s\n", RenderStatus("ok"), id)
					}
				}
				return map[string][]string{"deleted": deleted}, nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every document")
	return cmd
}

// printDocuments prints a listing outside JSON mode and returns the JSON
// payload.
func (a *App) printDocuments(cmd *cobra.Command, docs []storage.DocumentMeta) DocumentListData {
	if docs == nil {
		docs = []storage.DocumentMeta{}
	}
	if !a.jsonOut {
		fmt.Fprint(cmd.OutOrStdout(), storage.FormatDocumentList(docs))
		if len(docs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}
	return DocumentListData{Documents: docs, Count: len(docs)}
}
