// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the mentions command line.
//
// The command tree is built with cobra. The root command loads the
// configuration and the logger once, and every subcommand works from the
// shared App state.
//
// # Usage
//
//	func main() {
//	    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer stop()
//	    os.Exit(cli.Execute(ctx))
//	}
//
// # Commands Overview
//
// Editing:
//   - edit: Interactive editor with the suggestion menu
//   - convert: Turn plain text with trigger text into a document
//
// Documents:
//   - documents list, search, show, delete
//   - export: HTML, Markdown or JSON
//   - import: JSON, HTML, Markdown or text
//
// Candidates and settings:
//   - directory seed, search, add, remove, stats
//   - config show, init, get, set, keys
//   - version
//
// All commands support --json for scripting. Errors map to the exit codes
// in errors.go.
package cli
