// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/mentions-tui/internal/export"
	"github.com/jeranaias/mentions-tui/internal/logging"
	"github.com/jeranaias/mentions-tui/internal/storage"
	"github.com/jeranaias/mentions-tui/internal/ui/components"
)

// =============================================================================
// EXPORT COMMAND
// =============================================================================

type exportFlags struct {
	format     string
	outputDir  string
	pretty     bool
	fragment   bool
	plain      bool
	noMetadata bool
	open       bool
	theme      string
}

func (a *App) exportCommand() *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved document as HTML, Markdown or JSON",
		Long: `Export a saved document. Without --output the result is written to
stdout; --pretty renders Markdown and highlights HTML and JSON when
stdout is a terminal.

Mentions keep their trigger, value and data in every format: HTML
uses data attributes, Markdown uses mention: links (--plain writes
plain trigger+value text instead).

Examples:
  mentions export doc_4f2a9c01d7e3b865 --format html --output ./out
  mentions export doc_4f2a9c01d7e3b865 --format markdown --pretty`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "export", func() (interface{}, error) {
				return a.runExport(cmd.OutOrStdout(), args[0], f)
			})
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "markdown", "output format: html, markdown, json")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "write a file into this directory instead of stdout")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "render for the terminal")
	cmd.Flags().BoolVar(&f.fragment, "fragment", false, "HTML: write only the document body")
	cmd.Flags().BoolVar(&f.plain, "plain", false, "Markdown: write mentions as plain text")
	cmd.Flags().BoolVar(&f.noMetadata, "no-metadata", false, "omit title and timestamps")
	cmd.Flags().BoolVar(&f.open, "open", false, "open the exported file")
	cmd.Flags().StringVar(&f.theme, "theme", "dark", "HTML page theme: light or dark")
	return cmd
}

func (a *App) runExport(out io.Writer, id string, f exportFlags) (interface{}, error) {
	format, err := export.ParseFormat(f.format)
	if err != nil || format == export.FormatText {
		return nil, ErrUnsupportedFormat(f.format, []string{"html", "json", "markdown"})
	}

	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	stored, err := store.Load(id)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			return nil, NewNotFoundError("document", id)
		}
		return nil, err
	}

	ed, err := a.newEditor()
	if err != nil {
		return nil, err
	}
	doc, err := export.FromStored(stored, ed)
	if err != nil {
		return nil, err
	}

	table, err := a.cfg.ThemeTable()
	if err != nil {
		return nil, err
	}

	opts := export.DefaultOptions()
	opts.IncludeMetadata = !f.noMetadata
	opts.Fragment = f.fragment
	opts.MentionLinks = !f.plain
	opts.OpenAfterExport = f.open
	opts.Theme = f.theme

	exporter, err := export.New(format, opts, table)
	if err != nil {
		return nil, err
	}

	data := ExportData{ID: id, Format: string(format), Mentions: nonNil(doc.Mentions())}

	if f.outputDir != "" {
		opts.OutputDir = f.outputDir
		path, err := export.ExportToFile(doc, exporter, opts)
		if err != nil {
			return nil, NewCommandError("export", "write", string(format), err)
		}
		a.log.Info("document exported", logging.F("id", id), logging.F("path", path))
		data.Path = path
		if !a.jsonOut {
			fmt.Fprintf(out, "%s exported to %s\n", RenderStatus("ok"), path)
		}
		return data, nil
	}

	content, err := exporter.Export(doc)
	if err != nil {
		return nil, NewCommandError("export", "render", string(format), err)
	}
	if a.jsonOut {
		data.Content = string(content)
		return data, nil
	}

	if f.pretty && ColorsEnabled() {
		rendered, err := a.prettyPrint(format, content)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(out, rendered)
		return data, nil
	}
	_, err = out.Write(content)
	return data, err
}

// prettyPrint renders Markdown with glamour and highlights HTML and JSON.
func (a *App) prettyPrint(format export.Format, content []byte) (string, error) {
	width := GetTerminalWidth()
	if format == export.FormatMarkdown {
		return export.RenderPretty(content, width)
	}
	block := components.NewCodeBlock(string(format), string(content))
	block.SetMaxWidth(width)
	return block.Render(), nil
}

// =============================================================================
// IMPORT COMMAND
// =============================================================================

func (a *App) importCommand() *cobra.Command {
	var (
		format string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a file as a new document",
		Long: `Import a JSON, HTML, Markdown or text file as a new document.

The format follows the file extension unless --format is given. HTML
mentions are recognized by their data attributes and Markdown mentions
by their mention: links; trigger text in plain paragraphs is converted
into mentions as well. Use '-' to read stdin (requires --format).

Examples:
  mentions import notes.md
  mentions import page.html --title "Imported page"
  cat notes.txt | mentions import - --format text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return OutputJSON(cmd.OutOrStdout(), a.jsonOut, "import", func() (interface{}, error) {
				return a.runImport(cmd, args[0], format, title)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input format: "+fmt.Sprint(formatNames()))
	cmd.Flags().StringVar(&title, "title", "", "document title (default from the file)")
	return cmd
}

func (a *App) runImport(cmd *cobra.Command, path, formatName, title string) (interface{}, error) {
	var format export.Format
	var err error
	switch {
	case formatName != "":
		format, err = export.ParseFormat(formatName)
	case path == "-":
		err = NewValidationError("format", "", "--format is required when reading stdin")
	default:
		format, err = export.FormatOf(path)
	}
	if err != nil {
		return nil, err
	}

	src, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}

	ed, err := a.newEditor()
	if err != nil {
		return nil, err
	}
	m, err := a.newMatcher()
	if err != nil {
		return nil, err
	}

	res, err := export.NewImporter(ed, m).Import(format, src)
	if err != nil {
		return nil, NewCommandError("import", string(format), path, err)
	}
	if title == "" {
		title = res.Title
	}

	doc, err := storage.FromState(res.State, title)
	if err != nil {
		return nil, err
	}
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	id, err := store.Save(doc)
	if err != nil {
		return nil, NewCommandError("import", "save", path, err)
	}
	a.log.Info("document imported", logging.F("id", id), logging.F("format", string(format)))

	if !a.jsonOut {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s imported %s as %s\n", RenderStatus("ok"), path, id)
		fmt.Fprintln(out, RenderField("Title", doc.Title))
		fmt.Fprintln(out, RenderLabel("Mentions")+mentionList(doc.Mentions))
	}
	return ImportData{ID: id, Title: doc.Title, Mentions: nonNil(doc.Mentions)}, nil
}
