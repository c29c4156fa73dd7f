// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"encoding/json"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/logging"
)

// HTML attribute names of an exported mention.
const (
	AttrMarker  = "data-lexical-better-mention"
	AttrTrigger = "data-lexical-better-mention-trigger"
	AttrValue   = "data-lexical-better-mention-value"
	AttrData    = "data-lexical-better-mention-data"
)

// DOMPriority is the priority of the span converter.
const DOMPriority = 1

// Serialized is the JSON record of a mention.
type Serialized struct {
	Trigger string `json:"trigger"`
	Value   string `json:"value"`
	Data    Data   `json:"data,omitempty"`
	Type    string `json:"type"`
	Version int    `json:"version"`
}

// ExportJSON returns the serialized record. Data is omitted when absent.
func (n *Node) ExportJSON() any {
	return Serialized{
		Trigger: n.trigger,
		Value:   n.value,
		Data:    cloneData(n.data),
		Type:    n.Type(),
		Version: Version,
	}
}

// ImportJSON rebuilds a base mention from its serialized record. Data
// values that are not scalars are dropped.
func ImportJSON(raw []byte) (*Node, error) {
	var rec Serialized
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse mention: %w", err)
	}
	return New(rec.Trigger, rec.Value, rec.Data), nil
}

// ExportDOM renders the mention as a marked span whose text is
// trigger+value.
func (n *Node) ExportDOM() *html.Node {
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: AttrMarker, Val: "true"},
			{Key: AttrTrigger, Val: n.trigger},
			{Key: AttrValue, Val: n.value},
		},
	}
	if len(n.data) > 0 {
		if b, err := json.Marshal(n.data); err == nil {
			span.Attr = append(span.Attr, html.Attribute{Key: AttrData, Val: string(b)})
		}
	}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: n.TextContent()})
	return span
}

// ConvertDOM recognizes an exported mention span. Unmarked spans, and
// marked spans missing the trigger or value attribute, return nil. A data
// attribute that is not a JSON object of scalars is logged and dropped.
func ConvertDOM(el *html.Node, log logging.Logger) *Node {
	if el.Type != html.ElementNode || el.DataAtom != atom.Span {
		return nil
	}
	if _, ok := document.Attr(el, AttrMarker); !ok {
		return nil
	}
	trigger, ok := document.Attr(el, AttrTrigger)
	if !ok {
		return nil
	}
	value, ok := document.Attr(el, AttrValue)
	if !ok {
		return nil
	}

	var data Data
	if raw, ok := document.Attr(el, AttrData); ok && raw != "" {
		err := json.Unmarshal([]byte(raw), &data)
		if err == nil {
			err = ValidateData(data)
		}
		if err != nil {
			logging.OrNop(log).Warn("failed to parse data attribute of mention",
				logging.F("trigger", trigger),
				logging.F("value", value),
				logging.Err(err))
			data = nil
		}
	}
	return New(trigger, value, data)
}

// NodeType returns the registration of base mentions: JSON import and the
// span converter.
func NodeType(log logging.Logger) document.NodeType {
	return document.NodeType{
		Type: Type,
		ImportJSON: func(raw []byte) (document.Node, error) {
			return ImportJSON(raw)
		},
		DOM: []document.DOMConverter{{
			Tag:      "span",
			Priority: DOMPriority,
			Convert: func(el *html.Node) document.Node {
				if n := ConvertDOM(el, log); n != nil {
					return n
				}
				return nil
			},
		}},
	}
}
