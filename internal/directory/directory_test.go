// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentions-tui/internal/mention"
	"github.com/jeranaias/mentions-tui/internal/menu"
)

func openTest(t *testing.T) *Directory {
	t.Helper()
	d, err := Open(Config{DatabasePath: filepath.Join(t.TempDir(), "directory.db")})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func values(items []menu.SourceItem) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.Value)
	}
	return out
}

func TestSearch(t *testing.T) {
	d := openTest(t)
	ctx := context.Background()
	require.NoError(t, d.Add(ctx,
		Entry{Trigger: "@", Value: "Johanna"},
		Entry{Trigger: "@", Value: "mcjohn"},
		Entry{Trigger: "@", Value: "John", Data: mention.Data{"id": 7, "admin": true}},
		Entry{Trigger: "@", Value: "Anna"},
		Entry{Trigger: "#", Value: "john-tag"},
	))

	items, err := d.Search(ctx, "@", "jo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Johanna", "John", "mcjohn"}, values(items), "prefix matches first")
	assert.Equal(t, mention.Data{"id": float64(7), "admin": true}, items[1].Data)
	assert.Nil(t, items[0].Data)

	items, err = d.Search(ctx, "@", "")
	require.NoError(t, err)
	assert.Len(t, items, 4)

	items, err = d.Search(ctx, "due:", "jo")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearch_EscapesWildcards(t *testing.T) {
	d := openTest(t)
	ctx := context.Background()
	require.NoError(t, d.Add(ctx,
		Entry{Trigger: "#", Value: "100%"},
		Entry{Trigger: "#", Value: "1000"},
		Entry{Trigger: "#", Value: "a_b"},
		Entry{Trigger: "#", Value: "axb"},
	))

	items, err := d.Search(ctx, "#", "0%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100%"}, values(items))

	items, err = d.Search(ctx, "#", "a_")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, values(items))
}

func TestSearch_MaxResults(t *testing.T) {
	d, err := Open(Config{DatabasePath: filepath.Join(t.TempDir(), "d.db"), MaxResults: 2})
	require.NoError(t, err)
	defer d.Close()

	ctx := context.Background()
	require.NoError(t, d.Add(ctx, Entry{Trigger: "@", Value: "a1"}, Entry{Trigger: "@", Value: "a2"}, Entry{Trigger: "@", Value: "a3"}))
	items, err := d.Search(ctx, "@", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, values(items))
}

func TestSearchFunc(t *testing.T) {
	d := openTest(t)
	var search menu.SearchFunc = d.Search
	_, err := search(context.Background(), "@", "x")
	assert.NoError(t, err)
}

func TestAddRemove(t *testing.T) {
	d := openTest(t)
	ctx := context.Background()

	assert.ErrorIs(t, d.Add(ctx, Entry{Trigger: "@"}), ErrInvalidEntry)
	assert.ErrorIs(t, d.Add(ctx, Entry{Trigger: "@", Value: "x", Data: mention.Data{"nested": []any{1}}}), ErrInvalidEntry)

	require.NoError(t, d.Add(ctx, Entry{Trigger: "@", Value: "x", Data: mention.Data{"v": 1}}))
	require.NoError(t, d.Add(ctx, Entry{Trigger: "@", Value: "x", Data: mention.Data{"v": 2}}))
	items, err := d.Search(ctx, "@", "x")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mention.Data{"v": float64(2)}, items[0].Data, "re-adding updates data")

	ok, err := d.Remove(ctx, "@", "x")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = d.Remove(ctx, "@", "x")
	require.NoError(t, err)
	assert.False(t, ok)

	triggers, err := d.Triggers(ctx)
	require.NoError(t, err)
	assert.Empty(t, triggers)
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "people.toml", `
"@" = ["John", { value = "Jane", data = { id = 2, team = "core" } }]
"#" = ["urgent"]
`},
		{"yaml", "people.yaml", `
"@":
  - John
  - value: Jane
    data: {id: 2, team: core}
"#": [urgent]
`},
		{"json", "people.json", `{"@": ["John", {"value": "Jane", "data": {"id": 2, "team": "core"}}], "#": ["urgent"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseSeed(tt.file, []byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, []Entry{
				{Trigger: "#", Value: "urgent"},
				{Trigger: "@", Value: "John"},
				{Trigger: "@", Value: "Jane", Data: mention.Data{"id": float64(2), "team": "core"}},
			}, entries)
		})
	}

	_, err := ParseSeed("bad.yaml", []byte(`"@": [{data: {a: 1}}]`))
	assert.ErrorIs(t, err, ErrInvalidEntry)
	_, err = ParseSeed("bad.toml", []byte(`"@" = [1]`))
	assert.Error(t, err)
}

func TestSeed_ReplacesEntriesFromSameFile(t *testing.T) {
	d := openTest(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "people.yaml")

	require.NoError(t, os.WriteFile(path, []byte(`"@": [John, Josh]`), 0600))
	n, err := d.Seed(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, d.Add(ctx, Entry{Trigger: "@", Value: "Jo manual"}))

	require.NoError(t, os.WriteFile(path, []byte(`"@": [John]`), 0600))
	_, err = d.Seed(ctx, path)
	require.NoError(t, err)

	items, err := d.Search(ctx, "@", "jo")
	require.NoError(t, err)
	assert.Equal(t, []string{"Jo manual", "John"}, values(items))

	stats, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.EntryCount)
	assert.Equal(t, 1, stats.TriggerCount)
	assert.False(t, stats.LastSeed.IsZero())
}

func TestWatcher_Reseeds(t *testing.T) {
	d := openTest(t)
	path := filepath.Join(t.TempDir(), "tags.toml")
	require.NoError(t, os.WriteFile(path, []byte(`"#" = ["old"]`), 0600))
	_, err := d.Seed(context.Background(), path)
	require.NoError(t, err)

	seeded := make(chan int, 4)
	w, err := NewWatcher(d, []string{path}, 50*time.Millisecond, func(_ string, n int, err error) {
		if err == nil {
			seeded <- n
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`"#" = ["new", "newer"]`), 0600))

	select {
	case n := <-seeded:
		assert.Equal(t, 2, n)
	case <-time.After(5 * time.Second):
		t.Fatal("seed change was not observed")
	}

	items, err := d.Search(context.Background(), "#", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "newer"}, values(items))
}

func TestClosed(t *testing.T) {
	d := openTest(t)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	_, err := d.Search(context.Background(), "@", "")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, d.Add(context.Background(), Entry{Trigger: "@", Value: "x"}), ErrClosed)
}
