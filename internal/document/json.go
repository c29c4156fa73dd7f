// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotSerializable is returned for nodes that cannot be written as JSON.
var ErrNotSerializable = errors.New("node is not serializable")

// Version written for built-in node records.
const nodeVersion = 1

type serializedState struct {
	Root json.RawMessage `json:"root"`
}

type serializedElement struct {
	Children []json.RawMessage `json:"children"`
	Type     string            `json:"type"`
	Version  int               `json:"version"`
}

type serializedText struct {
	Detail  int    `json:"detail"`
	Format  int    `json:"format"`
	Mode    string `json:"mode"`
	Style   string `json:"style"`
	Text    string `json:"text"`
	Type    string `json:"type"`
	Version int    `json:"version"`
}

type serializedHeader struct {
	Type string `json:"type"`
}

// MarshalState encodes a state as {"root": {...}}.
func MarshalState(s *State) ([]byte, error) {
	root, err := marshalNode(s, RootKey)
	if err != nil {
		return nil, err
	}
	return json.Marshal(serializedState{Root: root})
}

// MarshalStateIndent is MarshalState with indentation.
func MarshalStateIndent(s *State) ([]byte, error) {
	data, err := MarshalState(s)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.MarshalIndent(v, "", "  ")
}

func marshalNode(s *State, key NodeKey) (json.RawMessage, error) {
	switch n := s.Node(key).(type) {
	case *ElementNode:
		rec := serializedElement{Type: n.typ, Version: nodeVersion, Children: []json.RawMessage{}}
		for _, k := range n.children {
			child, err := marshalNode(s, k)
			if err != nil {
				return nil, err
			}
			rec.Children = append(rec.Children, child)
		}
		return json.Marshal(rec)
	case *TextNode:
		return json.Marshal(serializedText{Mode: "normal", Text: n.text, Type: n.typ, Version: nodeVersion})
	case JSONExporter:
		return json.Marshal(n.ExportJSON())
	case nil:
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotSerializable, n.Type())
	}
}

// ParseState decodes a serialized document using the editor's registered
// node types and replacements. The editor's own state is not changed.
func (e *Editor) ParseState(data []byte) (*State, error) {
	var rec serializedState
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if len(rec.Root) == 0 {
		return nil, fmt.Errorf("failed to parse document: missing root")
	}
	var root serializedElement
	if err := json.Unmarshal(rec.Root, &root); err != nil {
		return nil, fmt.Errorf("failed to parse root: %w", err)
	}

	tx := newTx(e, NewState())
	for _, raw := range root.Children {
		n, err := e.importNode(tx, raw)
		if err != nil {
			return nil, err
		}
		if err := tx.Append(RootKey, n.Key()); err != nil {
			return nil, err
		}
	}
	return tx.finish(), nil
}

func (e *Editor) importNode(tx *Tx, raw json.RawMessage) (Node, error) {
	var hdr serializedHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, fmt.Errorf("failed to parse node: %w", err)
	}

	switch hdr.Type {
	case TypeParagraph:
		var rec serializedElement
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse paragraph: %w", err)
		}
		p := tx.Create(NewParagraph())
		for _, c := range rec.Children {
			child, err := e.importNode(tx, c)
			if err != nil {
				return nil, err
			}
			if err := tx.Append(p.Key(), child.Key()); err != nil {
				return nil, err
			}
		}
		return p, nil
	case TypeText, TypeZeroWidth:
		var rec serializedText
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse text: %w", err)
		}
		if hdr.Type == TypeZeroWidth {
			return tx.Create(NewZeroWidth()), nil
		}
		return tx.Create(NewText(rec.Text)), nil
	}

	nt, ok := e.types[hdr.Type]
	if !ok || nt.ImportJSON == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, hdr.Type)
	}
	n, err := nt.ImportJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", hdr.Type, err)
	}
	return tx.Create(n), nil
}
