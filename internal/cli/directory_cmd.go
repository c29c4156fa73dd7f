// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mentions-tui/internal/directory"
	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/menu"
)

// =============================================================================
// DIRECTORY COMMAND
// =============================================================================

func (a *App) directoryCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:     "directory",
		Aliases: []string{"dir"},
		Short:   "Manage the candidate directory that feeds suggestions",
		Long: `The directory is a SQLite index of mention candidates per trigger.
Set directory.path in the config (and remove mentions.items) to make
the editor search it instead of static items.

Seed files are YAML, JSON or TOML tables mapping each trigger to its
values. A value is a string or a table with value and data:

  "@":
    - John
    - value: Jane Doe
      data: {email: jane@example.com}
  "#": [urgent, later]`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "directory database (default from config or ~/.mentions/directory.db)")

	// withDirectory opens the directory for one subcommand.
	withDirectory := func(fn func(d *directory.Directory, path string) (interface{}, error)) func() (interface{}, error) {
		return func() (interface{}, error) {
			path, err := a.directoryPath(dbPath)
			if err != nil {
				return nil, err
			}
			d, err := a.openDirectory(path)
			if err != nil {
				return nil, err
			}
			defer d.Close()
			return fn(d, path)
		}
	}

	seed := &cobra.Command{
		Use:   "seed [file...]",
		Short: "Load candidates from seed files",
		Long: `Load candidates from seed files. Entries previously loaded from the
same file are replaced. Without arguments the configured
directory.seeds are loaded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if len(files) == 0 {
				files = a.cfg.Directory.Seeds
			}
			if len(files) == 0 {
				return NewValidationError("file", "", "no seed files given or configured")
			}
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "directory seed", withDirectory(func(d *directory.Directory, path string) (interface{}, error) {
				n, err := d.Seed(cmd.Context(), files...)
				if err != nil {
					return nil, NewCommandError("directory", "seed", strings.Join(files, ", "), err)
				}
				a.log.Info("directory seeded", logging.F("entries", n), logging.F("path", path))
				if !a.jsonOut {
					fmt.Fprintf(cmd.OutOrStdout(), "%s loaded %d entries from %d file(s) into %s\n",
						RenderStatus("ok"), n, len(files), path)
				}
				return SeedData{Files: files, Entries: n}, nil
			}))
		},
	}

	search := &cobra.Command{
		Use:   "search <trigger> [query]",
		Short: "Search candidates the way the editor menu does",
		Example: `  mentions directory search @ jo
  mentions directory search "#"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trigger, query := args[0], ""
			if len(args) == 2 {
				query = args[1]
			}
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "directory search", withDirectory(func(d *directory.Directory, path string) (interface{}, error) {
				items, err := d.Search(cmd.Context(), trigger, query)
				if err != nil {
					return nil, err
				}
				if items == nil {
					items = []menu.SourceItem{}
				}
				if !a.jsonOut {
					out := cmd.OutOrStdout()
					if len(items) == 0 {
						fmt.Fprintln(out, DimStyle.Render("No matches."))
					}
					for _, it := range items {
						line := MentionStyle.Render(trigger + it.Value)
						if len(it.Data) > 0 {
							line += " " + DimStyle.Render(formatData(it.Data))
						}
						fmt.Fprintln(out, line)
					}
				}
				return SearchData{Trigger: trigger, Query: query, Results: items}, nil
			}))
		},
	}

	add := &cobra.Command{
		Use:   "add <trigger> <value>",
		Short: "Add one candidate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "directory add", withDirectory(func(d *directory.Directory, path string) (interface{}, error) {
				entry := directory.Entry{Trigger: args[0], Value: args[1]}
				if err := d.Add(cmd.Context(), entry); err != nil {
					return nil, NewCommandError("directory", "add", args[0]+args[1], err)
				}
				if !a.jsonOut {
					fmt.Fprintf(cmd.OutOrStdout(), "%s added %s\n", RenderStatus("ok"), MentionStyle.Render(args[0]+args[1]))
				}
				return entry, nil
			}))
		},
	}

	remove := &cobra.Command{
		Use:   "remove <trigger> <value>",
		Short: "Remove one candidate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "directory remove", withDirectory(func(d *directory.Directory, path string) (interface{}, error) {
				removed, err := d.Remove(cmd.Context(), args[0], args[1])
				if err != nil {
					return nil, err
				}
				if !removed {
					return nil, NewNotFoundError("entry", args[0]+args[1])
				}
				if !a.jsonOut {
					fmt.Fprintf(cmd.OutOrStdout(), "%s removed %s\n", RenderStatus("ok"), args[0]+args[1])
				}
				return map[string]bool{"removed": true}, nil
			}))
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show directory statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "directory stats", withDirectory(func(d *directory.Directory, path string) (interface{}, error) {
				st, err := d.Stats(cmd.Context())
				if err != nil {
					return nil, err
				}
				triggers, err := d.Triggers(cmd.Context())
				if err != nil {
					return nil, err
				}
				data := DirectoryStatsData{
					Path:      path,
					Entries:   st.EntryCount,
					Triggers:  nonNil(triggers),
					SizeBytes: st.DatabaseSize,
				}
				if !st.LastSeed.IsZero() {
					data.LastSeed = st.LastSeed.UTC().Format("2006-01-02T15:04:05Z07:00")
				}
				if !a.jsonOut {
					out := cmd.OutOrStdout()
					fmt.Fprintln(out, TitleStyle.Render("Directory"))
					fmt.Fprintln(out, RenderField("Path", path))
					fmt.Fprintln(out, RenderField("Entries", fmt.Sprint(st.EntryCount)))
					fmt.Fprintln(out, RenderField("Triggers", strings.Join(triggers, " ")))
					fmt.Fprintln(out, RenderField("Last seed", formatTime(st.LastSeed)))
					fmt.Fprintln(out, RenderField("Size", formatBytes(st.DatabaseSize)))
				}
				return data, nil
			}))
		},
	}

	cmd.AddCommand(seed, search, add, remove, stats)
	return cmd
}

// formatData renders mention data as sorted key=value pairs.
func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(parts, " ")
}
