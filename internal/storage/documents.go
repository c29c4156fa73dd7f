// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/util"
)

// DefaultMaxDocuments is the number of documents kept before the oldest
// are pruned.
const DefaultMaxDocuments = 100

const (
	idPrefix      = "doc_"
	fileExt       = ".json"
	titleLength   = 50
	previewLength = 80
)

// =============================================================================
// STORED DOCUMENT TYPE
// =============================================================================

// StoredDocument is a persisted editor state.
type StoredDocument struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Content
	State   json.RawMessage `json:"state"`
	Preview string          `json:"preview,omitempty"`

	// Mentions holds trigger+value of every mention in document order.
	Mentions []string `json:"mentions,omitempty"`
}

// DocumentMeta contains metadata for listing documents.
type DocumentMeta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MentionCount int       `json:"mention_count"`
	Preview      string    `json:"preview"`
}

// FromState snapshots an editor state. An empty title is derived from the
// first line of text.
func FromState(s *document.State, title string) (*StoredDocument, error) {
	data, err := document.MarshalState(s)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}

	text := s.TextContent(document.RootKey)
	doc := &StoredDocument{
		Title:   title,
		State:   data,
		Preview: util.TruncateRunes(flatten(text), previewLength),
	}
	if doc.Title == "" {
		doc.Title = summarize(text)
	}
	for _, m := range mention.Collect(s, "") {
		doc.Mentions = append(doc.Mentions, m.TextContent())
	}
	return doc, nil
}

// Restore parses the stored state with the editor's node types.
func (d *StoredDocument) Restore(ed *document.Editor) (*document.State, error) {
	return ed.ParseState(d.State)
}

// Meta returns the listing metadata for the document.
func (d *StoredDocument) Meta() DocumentMeta {
	return DocumentMeta{
		ID:           d.ID,
		Title:        d.Title,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
		MentionCount: len(d.Mentions),
		Preview:      d.Preview,
	}
}

// HasMention reports whether the document contains the mention text
// (trigger followed by value), compared case-insensitively.
func (d *StoredDocument) HasMention(text string) bool {
	for _, m := range d.Mentions {
		if strings.EqualFold(m, text) {
			return true
		}
	}
	return false
}

func summarize(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "Untitled"
	}
	return util.TruncateRunes(line, titleLength)
}

func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// =============================================================================
// DOCUMENT STORE
// =============================================================================

// Store handles document persistence.
type Store struct {
	// BaseDir is the directory holding one JSON file per document.
	BaseDir string

	// MaxDocuments limits stored documents (0 = unlimited).
	MaxDocuments int
}

// NewStoreWithDir creates a store rooted at baseDir, creating it if needed.
func NewStoreWithDir(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}
	return &Store{BaseDir: baseDir, MaxDocuments: DefaultMaxDocuments}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a document and returns its ID.
func (s *Store) Save(doc *StoredDocument) (string, error) {
	if doc.ID == "" {
		doc.ID = generateDocumentID()
	} else if err := validateID(doc.ID); err != nil {
		return "", err
	}
	if len(doc.State) == 0 {
		return "", fmt.Errorf("document %s has no state", doc.ID)
	}
	if doc.Title == "" {
		doc.Title = "Untitled"
	}

	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := util.AtomicWriteFile(s.filePath(doc.ID), data, 0600); err != nil {
		return "", err
	}

	if s.MaxDocuments > 0 {
		s.enforceLimit()
	}
	return doc.ID, nil
}

// enforceLimit removes the least recently updated documents over the limit.
func (s *Store) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxDocuments {
		return
	}
	// List is most recent first.
	for _, m := range metas[s.MaxDocuments:] {
		_ = s.Delete(m.ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a document by ID.
func (s *Store) Load(id string) (*StoredDocument, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	var doc StoredDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", id, err)
	}
	return &doc, nil
}

// LoadByIndex loads a document by its position in List (0 = most recent).
func (s *Store) LoadByIndex(index int) (*StoredDocument, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(metas) {
		return nil, ErrDocumentNotFound
	}
	return s.Load(metas[index].ID)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved documents, most recently updated first. Files
// that cannot be parsed are skipped.
func (s *Store) List() ([]DocumentMeta, error) {
	docs, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	metas := make([]DocumentMeta, 0, len(docs))
	for _, d := range docs {
		metas = append(metas, d.Meta())
	}
	return metas, nil
}

func (s *Store) loadAll() ([]*StoredDocument, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var docs []*StoredDocument
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		doc, err := s.Load(strings.TrimSuffix(entry.Name(), fileExt))
		if err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	return docs, nil
}

// Search returns documents whose title, preview or mentions contain query,
// case-insensitively. An empty query lists everything.
func (s *Store) Search(query string) ([]DocumentMeta, error) {
	docs, err := s.loadAll()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	results := []DocumentMeta{}
	for _, d := range docs {
		if query == "" || matches(d, query) {
			results = append(results, d.Meta())
		}
	}
	return results, nil
}

func matches(d *StoredDocument, query string) bool {
	if strings.Contains(strings.ToLower(d.Title), query) ||
		strings.Contains(strings.ToLower(d.Preview), query) {
		return true
	}
	for _, m := range d.Mentions {
		if strings.Contains(strings.ToLower(m), query) {
			return true
		}
	}
	return false
}

// FindByMention returns the documents that contain the exact mention text,
// for example "@John".
func (s *Store) FindByMention(text string) ([]DocumentMeta, error) {
	docs, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	results := []DocumentMeta{}
	for _, d := range docs {
		if d.HasMention(text) {
			results = append(results, d.Meta())
		}
	}
	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a document by ID.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrDocumentNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved documents.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), fileExt) {
			if err := os.Remove(filepath.Join(s.BaseDir, entry.Name())); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (s *Store) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+fileExt)
}

func generateDocumentID() string {
	return idPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// validateID rejects IDs that would escape the base directory.
func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDocumentNotFound is returned when a document doesn't exist.
	// Use errors.Is(err, ErrDocumentNotFound) to check for this error.
	ErrDocumentNotFound = &DocumentError{Message: "document not found"}

	// ErrInvalidID is returned for IDs containing path separators.
	ErrInvalidID = &DocumentError{Message: "invalid document id"}
)

// DocumentError represents a document-store error. It implements the
// error interface and can be compared using errors.Is.
type DocumentError struct {
	Message string
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing document errors.
func (e *DocumentError) Is(target error) bool {
	t, ok := target.(*DocumentError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// LIST FORMATTING
// =============================================================================

// FormatDocumentList formats documents as a table with ID, last update,
// mention count and title.
func FormatDocumentList(docs []DocumentMeta) string {
	if len(docs) == 0 {
		return "No documents found."
	}

	rule := strings.Repeat("-", 72) + "\n"
	var sb strings.Builder
	sb.WriteString("Documents:\n")
	sb.WriteString(rule)
	sb.WriteString(util.PadWidth("ID", 20) + " " + util.PadWidth("Updated", 17) + " " + util.PadWidth("Mentions", 8) + " Title\n")
	sb.WriteString(rule)

	for _, d := range docs {
		sb.WriteString(util.PadWidth(d.ID, 20) + " " +
			util.PadWidth(d.UpdatedAt.Format("2006-01-02 15:04"), 17) + " " +
			util.PadWidth(strconv.Itoa(d.MentionCount), 8) + " " +
			util.TruncateWidth(d.Title, 30) + "\n")
	}
	return sb.String()
}
