// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/matcher"
)

var demoMatcher = matcher.MustNew(matcher.Config{Triggers: []string{"@", "#", `\w+:`}})

func TestConvertText(t *testing.T) {
	ed := newEditor(t, nil, nil)
	require.NoError(t, ed.Update(func(tx *document.Tx) error {
		p := tx.Create(document.NewParagraph())
		if err := tx.Append(document.RootKey, p.Key()); err != nil {
			return err
		}
		for _, n := range ConvertText(tx, demoMatcher, "Hey @John, the task is #urgent and due:tomorrow") {
			if err := tx.Append(p.Key(), n.Key()); err != nil {
				return err
			}
		}
		return nil
	}))

	s := ed.State()
	assert.Equal(t, "Hey @John, the task is #urgent and due:tomorrow", s.TextContent(document.RootKey))

	var got []string
	for _, m := range Collect(s, "") {
		got = append(got, m.Trigger()+"|"+m.Value())
	}
	assert.Equal(t, []string{"@|John", "#|urgent", "due:|tomorrow"}, got)
}

func TestAppendText_Paragraphs(t *testing.T) {
	ed := newEditor(t, nil, nil)
	var keys []document.NodeKey
	require.NoError(t, ed.Update(func(tx *document.Tx) error {
		var err error
		keys, err = AppendText(tx, demoMatcher, "ping @ops\r\nno mentions here")
		return err
	}))

	require.Len(t, keys, 2)
	s := ed.State()
	assert.Equal(t, "ping @ops", s.TextContent(keys[0]))
	assert.Equal(t, "no mentions here", s.TextContent(keys[1]))
	assert.Len(t, Collect(s, "@"), 1)
}

func TestConvertText_NoMentions(t *testing.T) {
	ed := newEditor(t, nil, nil)
	require.NoError(t, ed.Update(func(tx *document.Tx) error {
		nodes := ConvertText(tx, demoMatcher, "mail foo@bar.com")
		require.Len(t, nodes, 1)
		_, isMention := nodes[0].(*Node)
		assert.False(t, isMention)
		return nil
	}))
}
