// json_output.go - JSON output support for scripting the mentions CLI.
//
// Every command accepts --json and then writes one JSONResponse to stdout.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jeranaias/mentions-tui/internal/menu"
	"github.com/jeranaias/mentions-tui/internal/storage"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the ISO8601 timestamp when the response was generated
	Timestamp string `json:"timestamp"`

	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response to w.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// OutputJSON runs handler and, in JSON mode, wraps its result in a
// JSONResponse. Outside JSON mode the handler prints for itself.
func OutputJSON(w io.Writer, jsonMode bool, command string, handler func() (interface{}, error)) error {
	data, err := handler()
	if !jsonMode {
		return err
	}
	if err != nil {
		_ = NewJSONErrorResponse(command, err).Print(w)
		return err
	}
	return NewJSONResponse(command, data).Print(w)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData is returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// ConvertData is returned by the convert command.
type ConvertData struct {
	Mentions []string        `json:"mentions"`
	State    json.RawMessage `json:"state"`
}

// ExportData is returned by the export command.
type ExportData struct {
	ID       string   `json:"id"`
	Format   string   `json:"format"`
	Path     string   `json:"path,omitempty"`
	Content  string   `json:"content,omitempty"`
	Mentions []string `json:"mentions"`
}

// ImportData is returned by the import command.
type ImportData struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Mentions []string `json:"mentions"`
}

// DocumentListData is returned by the documents list and search commands.
type DocumentListData struct {
	Documents []storage.DocumentMeta `json:"documents"`
	Count     int                    `json:"count"`
}

// SeedData is returned by the directory seed command.
type SeedData struct {
	Files   []string `json:"files"`
	Entries int      `json:"entries"`
}

// SearchData is returned by the directory search command.
type SearchData struct {
	Trigger string            `json:"trigger"`
	Query   string            `json:"query"`
	Results []menu.SourceItem `json:"results"`
}

// DirectoryStatsData is returned by the directory stats command.
type DirectoryStatsData struct {
	Path      string   `json:"path"`
	Entries   int      `json:"entries"`
	Triggers  []string `json:"triggers"`
	LastSeed  string   `json:"last_seed,omitempty"`
	SizeBytes int64    `json:"size_bytes"`
}

// ConfigValueData is returned by config get and set.
type ConfigValueData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}
