// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"strings"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/matcher"
)

// ConvertText creates the text and mention nodes for plain text inside tx,
// in order. Every trigger occurrence recognized by m becomes a mention;
// the nodes are created detached.
func ConvertText(tx *document.Tx, m *matcher.Matcher, text string) []document.Node {
	var nodes []document.Node
	for _, seg := range m.Split(text) {
		if seg.IsMention() {
			nodes = append(nodes, Create(tx, seg.Trigger, seg.Value, nil))
			continue
		}
		nodes = append(nodes, tx.Create(document.NewText(seg.Text)))
	}
	return nodes
}

// AppendText appends text to the root as paragraphs, one per line, with
// mentions converted by m. It returns the keys of the new paragraphs.
func AppendText(tx *document.Tx, m *matcher.Matcher, text string) ([]document.NodeKey, error) {
	var keys []document.NodeKey
	for _, line := range strings.Split(text, "\n") {
		p := tx.Create(document.NewParagraph())
		if err := tx.Append(document.RootKey, p.Key()); err != nil {
			return nil, err
		}
		for _, n := range ConvertText(tx, m, strings.TrimRight(line, "\r")) {
			if err := tx.Append(p.Key(), n.Key()); err != nil {
				return nil, err
			}
		}
		keys = append(keys, p.Key())
	}
	return keys, nil
}
