// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/mention"
)

func newEditor(t *testing.T) *document.Editor {
	t.Helper()
	ed, err := document.NewEditor(mention.EditorConfig(nil, nil))
	require.NoError(t, err)
	return ed
}

// write fills ed with one paragraph: text, a mention, more text.
func write(t *testing.T, ed *document.Editor, before, trigger, value, after string) {
	t.Helper()
	require.NoError(t, ed.Update(func(tx *document.Tx) error {
		p := tx.Create(document.NewParagraph())
		l := tx.Create(document.NewText(before))
		m := mention.Create(tx, trigger, value, mention.Data{"id": 7})
		r := tx.Create(document.NewText(after))
		if err := tx.Append(document.RootKey, p.Key()); err != nil {
			return err
		}
		return tx.Append(p.Key(), l.Key(), m.Key(), r.Key())
	}))
}

func snapshot(t *testing.T, before, trigger, value, after string) *StoredDocument {
	t.Helper()
	ed := newEditor(t)
	write(t, ed, before, trigger, value, after)
	doc, err := FromState(ed.State(), "")
	require.NoError(t, err)
	return doc
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreWithDir(filepath.Join(t.TempDir(), "documents"))
	require.NoError(t, err)
	return s
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestFromState(t *testing.T) {
	doc := snapshot(t, "Meeting with ", "@", "John", " tomorrow")

	assert.Equal(t, "Meeting with @John tomorrow", doc.Title)
	assert.Equal(t, "Meeting with @John tomorrow", doc.Preview)
	assert.Equal(t, []string{"@John"}, doc.Mentions)
	assert.True(t, doc.HasMention("@john"))
	assert.False(t, doc.HasMention("#John"))
	assert.NotEmpty(t, doc.State)
}

func TestFromState_EmptyDocument(t *testing.T) {
	doc, err := FromState(document.NewState(), "")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", doc.Title)
	assert.Empty(t, doc.Mentions)
}

func TestFromState_LongTitleTruncated(t *testing.T) {
	doc := snapshot(t, strings.Repeat("word ", 20), "#", "tag", "")
	assert.Equal(t, titleLength, len([]rune(doc.Title)))
	assert.True(t, strings.HasSuffix(doc.Title, "..."))
}

func TestRestore(t *testing.T) {
	doc := snapshot(t, "Hi ", "@", "Jane", "!")

	ed := newEditor(t)
	state, err := doc.Restore(ed)
	require.NoError(t, err)

	mentions := mention.Collect(state, "@")
	require.Len(t, mentions, 1)
	assert.Equal(t, "Jane", mentions[0].Value())
	assert.Equal(t, mention.Data{"id": float64(7)}, mentions[0].Data())
	assert.Equal(t, "Hi @Jane!", state.TextContent(document.RootKey))
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestNewStoreWithDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "documents")
	s, err := NewStoreWithDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, s.BaseDir)
	assert.Equal(t, DefaultMaxDocuments, s.MaxDocuments)
	assert.DirExists(t, dir)
}

func TestStore_SaveAndLoad(t *testing.T) {
	s := newStore(t)
	doc := snapshot(t, "Ping ", "@", "Ops", "")

	id, err := s.Save(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "doc_"))
	assert.False(t, doc.CreatedAt.IsZero())

	info, err := os.Stat(filepath.Join(s.BaseDir, id+".json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, doc.Title, loaded.Title)
	assert.Equal(t, doc.Mentions, loaded.Mentions)
	assert.JSONEq(t, string(doc.State), string(loaded.State))
}

func TestStore_SaveKeepsCreatedAt(t *testing.T) {
	s := newStore(t)
	doc := snapshot(t, "a ", "@", "b", "")
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc.CreatedAt = created

	_, err := s.Save(doc)
	require.NoError(t, err)
	assert.True(t, doc.CreatedAt.Equal(created))
	assert.True(t, doc.UpdatedAt.After(created))
}

func TestStore_SaveWithoutState(t *testing.T) {
	s := newStore(t)
	_, err := s.Save(&StoredDocument{Title: "empty"})
	assert.Error(t, err)
}

func TestStore_LoadNotFound(t *testing.T) {
	s := newStore(t)
	_, err := s.Load("doc_missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = s.LoadByIndex(0)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestStore_InvalidID(t *testing.T) {
	s := newStore(t)
	for _, id := range []string{"", "..", "../x", `a\b`} {
		_, err := s.Load(id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
		assert.ErrorIs(t, s.Delete(id), ErrInvalidID, id)
	}

	doc := snapshot(t, "", "@", "x", "")
	doc.ID = "../escape"
	_, err := s.Save(doc)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestStore_ListOrderAndCorruptFiles(t *testing.T) {
	s := newStore(t)

	first := snapshot(t, "first ", "@", "a", "")
	_, err := s.Save(first)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second := snapshot(t, "second ", "#", "b", "")
	_, err = s.Save(second)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir, "broken.json"), []byte("{"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(s.BaseDir, "notes.txt"), []byte("x"), 0600))

	metas, err := s.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, second.ID, metas[0].ID)
	assert.Equal(t, first.ID, metas[1].ID)
	assert.Equal(t, 1, metas[0].MentionCount)

	byIndex, err := s.LoadByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, byIndex.ID)
}

func TestStore_EnforceLimit(t *testing.T) {
	s := newStore(t)
	s.MaxDocuments = 2

	var ids []string
	for _, v := range []string{"a", "b", "c"} {
		id, err := s.Save(snapshot(t, "x ", "@", v, ""))
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(10 * time.Millisecond)
	}

	metas, err := s.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	_, err = s.Load(ids[0])
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestStore_Search(t *testing.T) {
	s := newStore(t)
	_, err := s.Save(snapshot(t, "Lunch with ", "@", "Alice", ""))
	require.NoError(t, err)
	_, err = s.Save(snapshot(t, "Release ", "#", "launch", " notes"))
	require.NoError(t, err)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"lunch", 1},
		{"ALICE", 1},
		{"#launch", 1},
		{"notes", 1},
		{"zebra", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(tt.query)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestStore_FindByMention(t *testing.T) {
	s := newStore(t)
	_, err := s.Save(snapshot(t, "", "@", "Alice", ""))
	require.NoError(t, err)
	_, err = s.Save(snapshot(t, "", "@", "Alicia", ""))
	require.NoError(t, err)

	got, err := s.FindByMention("@alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "@Alice", got[0].Title)
}

func TestStore_DeleteAndClear(t *testing.T) {
	s := newStore(t)
	id, err := s.Save(snapshot(t, "", "@", "a", ""))
	require.NoError(t, err)
	_, err = s.Save(snapshot(t, "", "@", "b", ""))
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	assert.ErrorIs(t, s.Delete(id), ErrDocumentNotFound)

	require.NoError(t, s.Clear())
	metas, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, metas)
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatDocumentList(t *testing.T) {
	assert.Equal(t, "No documents found.", FormatDocumentList(nil))

	out := FormatDocumentList([]DocumentMeta{{
		ID:           "doc_0123456789abcdef",
		Title:        "Standup with @Ops",
		UpdatedAt:    time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC),
		MentionCount: 3,
	}})
	assert.Contains(t, out, "doc_0123456789abcdef")
	assert.Contains(t, out, "2025-03-04 09:30")
	assert.Contains(t, out, "Standup with @Ops")
	assert.Contains(t, out, "3 ")
}
