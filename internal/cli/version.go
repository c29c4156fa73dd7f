// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION COMMAND
// =============================================================================

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "version", func() (interface{}, error) {
				data := VersionData{
					Version:   Version,
					GitCommit: GitCommit,
					BuildDate: BuildDate,
					GoVersion: runtime.Version(),
				}
				if !a.jsonOut {
					out := cmd.OutOrStdout()
					fmt.Fprintln(out, TitleStyle.Render("mentions "+data.Version))
					fmt.Fprintln(out, RenderField("Commit", data.GitCommit))
					fmt.Fprintln(out, RenderField("Built", data.BuildDate))
					fmt.Fprintln(out, RenderField("Go", data.GoVersion))
				}
				return data, nil
			})
		},
	}
}
