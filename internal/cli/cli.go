// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mentions-tui/internal/config"
	"github.com/jeranaias/mentions-tui/internal/directory"
	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/matcher"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// App carries the global flags and the state every command shares once
// the root command has loaded the configuration.
type App struct {
	cfgFile string
	jsonOut bool
	verbose bool

	cfg        *config.Config
	configPath string
	log        logging.Logger
	logFile    *os.File
}

// NewRootCommand creates the mentions command tree.
func NewRootCommand() *cobra.Command {
	return (&App{}).rootCommand()
}

// Execute runs the CLI with os.Args, prints any error and returns the
// process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err != nil {
		jsonMode, _ := root.PersistentFlags().GetBool("json")
		DisplayError(root.ErrOrStderr(), err, jsonMode)
	}
	return GetExitCode(err)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mentions",
		Short: "Terminal editor with @mentions, #tags and custom triggers",
		Long: `mentions is a terminal rich text editor that turns trigger text like
@John, #urgent or due:tomorrow into mention entities.

Typing a trigger opens a suggestion menu fed by static items or by a
candidate directory. Documents are saved as JSON and can be exported
to HTML, Markdown or JSON, or imported back.

COMMON WORKFLOWS:
  Write a note:       mentions edit
  Reopen a note:      mentions documents list  ->  mentions edit <id>
  Convert text:       echo "Ping @Anna" | mentions convert
  Publish:            mentions export <id> --format markdown --pretty
  Load people:        mentions directory seed people.yaml`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.mentions/config.toml)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "write results as JSON")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.editCommand(),
		a.convertCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.documentsCommand(),
		a.directoryCommand(),
		a.configCommand(),
		a.versionCommand(),
	)
	return root
}

// setup loads the configuration and the logger.
func (a *App) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	cfg, path, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.configPath = path
	config.SetGlobal(cfg)

	out := cmd.ErrOrStderr()
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	a.log = logging.NewLogger(a.loggerConfig(out))
	logging.SetGlobal(a.log)

	a.log.Debug("configuration loaded",
		logging.F("path", a.configPath),
		logging.F("command", cmd.CommandPath()))
	return nil
}

func (a *App) teardown(cmd *cobra.Command, args []string) error {
	if a.logFile != nil {
		err := a.logFile.Close()
		a.logFile = nil
		return err
	}
	return nil
}

// annotationCreatesConfig marks commands that may run before the --config
// file exists.
const annotationCreatesConfig = "creates-config"

// loadConfig reads --config, or the first default config file, or the
// defaults. It returns the file path, or "" for the defaults.
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	if a.cfgFile != "" {
		_, statErr := os.Stat(a.cfgFile)
		if errors.Is(statErr, os.ErrNotExist) && cmd.Annotations[annotationCreatesConfig] == "true" {
			cfg := config.Default()
			cfg.SetDefaults()
			return cfg, "", nil
		}
		cfg, err := config.LoadFromPath(a.cfgFile)
		return cfg, a.cfgFile, err
	}

	paths, err := config.ConfigPaths()
	if err != nil {
		return nil, "", err
	}
	for _, p := range paths {
		if _, statErr := os.Stat(p); statErr == nil {
			cfg, err := config.LoadFromPath(p)
			return cfg, p, err
		}
	}
	cfg, err := config.Load()
	return cfg, "", err
}

// loggerConfig switches to JSON logs when they are not read by a person.
func (a *App) loggerConfig(out io.Writer) *logging.Config {
	lc := a.cfg.LoggerConfig(out)
	if a.jsonOut || a.cfg.Logging.File != "" || !IsStderrTTY() {
		lc.JSONFormat = true
	}
	if a.verbose {
		lc.Level = logging.LevelDebug
	}
	return lc
}

// =============================================================================
// SHARED BUILDERS
// =============================================================================

// newEditor creates an editor with mention support and rich text editing.
func (a *App) newEditor() (*document.Editor, error) {
	ed, err := document.NewEditor(mention.EditorConfig(a.log, nil))
	if err != nil {
		return nil, err
	}
	document.RegisterRichText(ed)
	mention.RegisterBehavior(ed)
	return ed, nil
}

// newMatcher builds a matcher from the mentions section.
func (a *App) newMatcher() (*matcher.Matcher, error) {
	m, err := matcher.New(a.cfg.MatcherConfig())
	if err != nil {
		return nil, NewCommandError("mentions", "configure", "invalid triggers", err)
	}
	return m, nil
}

// openStore opens the document store.
func (a *App) openStore() (*storage.Store, error) {
	dir, err := a.cfg.DocumentsDir()
	if err != nil {
		return nil, err
	}
	return storage.NewStoreWithDir(dir)
}

// directoryPath returns the configured directory database, or the default
// location under the config directory.
func (a *App) directoryPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if a.cfg.Directory.Path != "" {
		return a.cfg.Directory.Path, nil
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "directory.db"), nil
}

// openDirectory opens the candidate directory at path.
func (a *App) openDirectory(path string) (*directory.Directory, error) {
	dir, err := directory.Open(directory.Config{DatabasePath: path, Logger: a.log})
	if err != nil {
		return nil, NewCommandError("directory", "open", path, err)
	}
	return dir, nil
}

// readInput returns the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
