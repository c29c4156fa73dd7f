// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mentions-tui/internal/config"
	"github.com/jeranaias/mentions-tui/internal/logging"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func (a *App) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View and modify the mentions configuration.

The config file is TOML by default; .json, .yaml and .yml files are
read and written in their own format. MENTIONS_* environment variables
override file values.`,
	}
	cmd.AddCommand(
		a.configShowCommand(),
		a.configInitCommand(),
		a.configGetCommand(),
		a.configSetCommand(),
		a.configKeysCommand(),
	)
	return cmd
}

func (a *App) configShowCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOut {
				return NewJSONResponse("config show", map[string]interface{}{
					"config_path": a.configPath,
					"config":      a.cfg,
				}).Print(cmd.OutOrStdout())
			}

			f := config.Format(strings.ToLower(format))
			switch f {
			case config.FormatTOML, config.FormatJSON, config.FormatYAML:
			default:
				return ErrUnsupportedFormat(format, []string{"json", "toml", "yaml"})
			}
			data, err := config.Marshal(a.cfg, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			path := a.configPath
			if path == "" {
				path = "(defaults)"
			}
			fmt.Fprintln(out, DimStyle.Render("# "+path))
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml, json, yaml")
	return cmd
}

// targetPath returns the file config init and set write to.
func (a *App) targetPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	if a.configPath != "" {
		return a.configPath, nil
	}
	paths, err := config.ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

func (a *App) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a configuration file with the defaults",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationCreatesConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "config init", func() (interface{}, error) {
				path, err := a.targetPath()
				if err != nil {
					return nil, err
				}
				if _, err := os.Stat(path); err == nil && !force {
					return nil, NewCommandError("config", "init", "file exists (use --force to overwrite)", errors.New(path))
				}
				if err := config.SaveAs(config.Default(), path); err != nil {
					return nil, err
				}
				a.log.Info("configuration written", logging.F("path", path))
				if !a.jsonOut {
					fmt.Fprintf(cmd.OutOrStdout(), "%s created %s\n", RenderStatus("ok"), path)
				}
				return map[string]string{"config_path": path}, nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *App) configGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Example: `  mentions config get mentions.allow_spaces
  mentions config get directory.path`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "config get", func() (interface{}, error) {
				v, err := a.cfg.Get(args[0])
				if err != nil {
					return nil, NewValidationError("key", args[0], err.Error())
				}
				if !a.jsonOut {
					fmt.Fprintln(cmd.OutOrStdout(), formatValue(v))
				}
				return ConfigValueData{Key: args[0], Value: v}, nil
			})
		},
	}
}

func (a *App) configSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one configuration value in the config file",
		Long: `Change one value in the config file. Lists take comma separated
values. Setting directory.path removes mentions.items, since the
editor uses either static items or the directory.`,
		Example: `  mentions config set mentions.search_delay_ms 100
  mentions config set mentions.triggers "@,#,due:"
  mentions config set directory.path ~/.mentions/directory.db`,
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{annotationCreatesConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "config set", func() (interface{}, error) {
				path, err := a.targetPath()
				if err != nil {
					return nil, err
				}
				cfg, err := readConfigFile(path)
				if err != nil {
					return nil, err
				}

				if err := cfg.Set(key, value); err != nil {
					return nil, NewValidationError("key", key, err.Error())
				}
				if key == "directory.path" && value != "" {
					cfg.Mentions.Items = nil
				}
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				if err := config.SaveAs(cfg, path); err != nil {
					return nil, err
				}

				got, _ := cfg.Get(key)
				a.log.Info("configuration changed", logging.F("key", key), logging.F("path", path))
				if !a.jsonOut {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", RenderStatus("ok"), key, formatValue(got))
				}
				return ConfigValueData{Key: key, Value: got}, nil
			})
		},
	}
}

func (a *App) configKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keys config get and set accept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "config keys", func() (interface{}, error) {
				keys := config.GetAllKeys()
				if !a.jsonOut {
					fmt.Fprintln(cmd.OutOrStdout(), strings.Join(keys, "\n"))
				}
				return keys, nil
			})
		},
	}
}

// readConfigFile reads path without environment overrides, so that set
// writes back only what the file holds. A missing file starts from the
// defaults.
func readConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := config.Parse(data, config.FormatOf(path))
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case []string:
		return strings.Join(v, ",")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
