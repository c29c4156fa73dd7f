// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export converts mention documents to and from files.
//
// # Supported Formats
//
//   - JSON: the serialized editor state, re-importable as is
//   - HTML: a styled page whose mention spans keep their trigger, value
//     and data attributes, so the page imports back losslessly
//   - Markdown: readable text; mentions become mention: links (or plain
//     trigger+value text) and the metadata goes in YAML front matter
//   - Text: plain text, import only, with mentions recognized by the
//     configured triggers
//
// # Usage
//
//	doc, err := export.FromStored(stored, ed)
//	path, err := export.ExportToFile(doc, export.NewHTMLExporter(opts, table), opts)
//
//	im := export.NewImporter(ed, m)
//	result, err := im.Import(export.FormatMarkdown, data)
package export
