// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jeranaias/mentions-tui/internal/document"
	"github.com/jeranaias/mentions-tui/internal/theme"
)

// AttrRendered carries trigger+value on rendered mentions.
const AttrRendered = "data-better-mention"

// Props is everything a render hook needs to draw one mention.
type Props struct {
	Key     document.NodeKey
	Trigger string
	Value   string
	Data    Data
	Focused bool

	// ClassName is the resolved class list for class-styled mentions,
	// including the focused class when Focused.
	ClassName string

	// Values is set when the theme entry is structured.
	Values *theme.Values

	// ContainerClass is the structured container class for the current
	// focus state.
	ContainerClass string

	// Mention is trigger+value.
	Mention string
}

// Component renders a mention from its props.
type Component interface {
	Render(p Props) string
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(p Props) string

// Render calls f.
func (f ComponentFunc) Render(p Props) string { return f(p) }

// Decorate resolves the theme for n and returns its render props.
func Decorate(n *Node, table *theme.Table, focused bool) Props {
	res := table.Resolve(n.trigger)
	return Props{
		Key:            n.Key(),
		Trigger:        n.trigger,
		Value:          n.value,
		Data:           cloneData(n.data),
		Focused:        focused,
		ClassName:      res.ClassName(focused),
		Values:         res.Values,
		ContainerClass: res.ContainerClass(focused),
		Mention:        n.TextContent(),
	}
}

// Render draws n through its variant's component, or through the default
// markup for base mentions.
func Render(n *Node, table *theme.Table, focused bool) string {
	p := Decorate(n, table, focused)
	if n.variant != nil && n.variant.component != nil {
		return n.variant.component.Render(p)
	}
	return Markup(p)
}

// Markup is the default mention markup. Structured theme entries produce
// a container with separately classed trigger and value spans; otherwise
// a single span carries the class list.
func Markup(p Props) string {
	span := newSpan(p.ClassName)
	if p.Values != nil {
		span = newSpan(p.ContainerClass)
		trigger := newSpan(p.Values.Trigger)
		trigger.AppendChild(&html.Node{Type: html.TextNode, Data: p.Trigger})
		value := newSpan(p.Values.Value)
		value.AppendChild(&html.Node{Type: html.TextNode, Data: p.Value})
		span.AppendChild(trigger)
		span.AppendChild(value)
	} else {
		span.AppendChild(&html.Node{Type: html.TextNode, Data: p.Mention})
	}
	span.Attr = append(span.Attr, html.Attribute{Key: AttrRendered, Val: p.Mention})

	var b strings.Builder
	if err := html.Render(&b, span); err != nil {
		return fmt.Sprintf("<span>%s</span>", html.EscapeString(p.Mention))
	}
	return b.String()
}

func newSpan(class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	return n
}
