// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package document

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DOMExporter is implemented by nodes with a custom HTML form.
type DOMExporter interface {
	ExportDOM() *html.Node
}

// DOMConverter recognizes an HTML element as a node. Convert returns nil
// when the element is not one of its nodes. Converters with a higher
// priority are tried first.
type DOMConverter struct {
	Tag      string
	Priority int
	Convert  func(n *html.Node) Node
}

// Attr returns the value of an attribute and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportHTML renders the document as a sequence of <p> elements.
func ExportHTML(s *State) (string, error) {
	var b strings.Builder
	for i, block := range s.Children(RootKey) {
		el, err := exportDOM(s, block)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		if err := html.Render(&b, el); err != nil {
			return "", fmt.Errorf("failed to render html: %w", err)
		}
	}
	return b.String(), nil
}

func exportDOM(s *State, n Node) (*html.Node, error) {
	switch n := n.(type) {
	case *ElementNode:
		el := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
		for _, c := range s.Children(n.Key()) {
			if t, ok := c.(*TextNode); ok && t.IsZeroWidth() {
				continue
			}
			child, err := exportDOM(s, c)
			if err != nil {
				return nil, err
			}
			el.AppendChild(child)
		}
		return el, nil
	case *TextNode:
		return &html.Node{Type: html.TextNode, Data: n.text}, nil
	case DOMExporter:
		return n.ExportDOM(), nil
	case Decorator:
		return &html.Node{Type: html.TextNode, Data: n.TextContent()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotSerializable, n.Type())
	}
}

// =============================================================================
// IMPORT
// =============================================================================

// skippedTags never contribute document content.
var skippedTags = map[atom.Atom]bool{
	atom.Head: true, atom.Title: true, atom.Style: true, atom.Script: true,
	atom.Template: true, atom.Noscript: true,
}

var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Blockquote: true, atom.Pre: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true,
}

// ParseHTML builds a document from an HTML fragment using the editor's DOM
// converters and replacements. Unrecognized inline elements contribute
// their text; block elements start new paragraphs.
func (e *Editor) ParseHTML(src string) (*State, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	imp := &htmlImporter{editor: e, tx: newTx(e, NewState()), converters: e.domConverters()}
	for _, n := range nodes {
		if err := imp.visit(n); err != nil {
			return nil, err
		}
	}
	return imp.tx.finish(), nil
}

func (e *Editor) domConverters() map[string][]DOMConverter {
	out := make(map[string][]DOMConverter)
	for _, nt := range e.types {
		for _, c := range nt.DOM {
			out[c.Tag] = append(out[c.Tag], c)
		}
	}
	for tag := range out {
		list := out[tag]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority > list[j].Priority })
	}
	return out
}

type htmlImporter struct {
	editor     *Editor
	tx         *Tx
	converters map[string][]DOMConverter
	block      NodeKey
}

func (imp *htmlImporter) visit(n *html.Node) error {
	switch n.Type {
	case html.TextNode:
		if imp.block == "" && strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return imp.appendInline(NewText(n.Data))
	case html.ElementNode:
		if skippedTags[n.DataAtom] {
			return nil
		}
		for _, c := range imp.converters[n.Data] {
			if node := c.Convert(n); node != nil {
				return imp.appendInline(node)
			}
		}
		if n.DataAtom == atom.Br {
			return imp.appendInline(NewText("\n"))
		}
		if blockTags[n.DataAtom] {
			imp.block = ""
			if err := imp.ensureBlock(); err != nil {
				return err
			}
			if err := imp.visitChildren(n); err != nil {
				return err
			}
			imp.block = ""
			return nil
		}
		return imp.visitChildren(n)
	default:
		return imp.visitChildren(n)
	}
}

func (imp *htmlImporter) visitChildren(n *html.Node) error {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := imp.visit(c); err != nil {
			return err
		}
	}
	return nil
}

func (imp *htmlImporter) ensureBlock() error {
	if imp.block != "" {
		return nil
	}
	p := imp.tx.Create(NewParagraph())
	if err := imp.tx.Append(RootKey, p.Key()); err != nil {
		return err
	}
	imp.block = p.Key()
	return nil
}

func (imp *htmlImporter) appendInline(n Node) error {
	if err := imp.ensureBlock(); err != nil {
		return err
	}
	n = imp.tx.Create(n)
	return imp.tx.Append(imp.block, n.Key())
}
