// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package theme resolves mention triggers to style classes.
//
// A Table is an ordered list of rules. Each rule has a pattern that is
// tested against the trigger text, and either a class string (with an
// optional focused class) or a structured Values record. The first
// matching rule wins.
package theme

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// FocusedSuffix marks the focused-state companion of a class entry.
const FocusedSuffix = "Focused"

// ErrInvalidPattern is returned when a rule key is not a valid pattern.
var ErrInvalidPattern = errors.New("invalid theme pattern")

// Values styles the parts of a mention independently.
type Values struct {
	Trigger          string `toml:"trigger,omitempty" json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Value            string `toml:"value,omitempty" json:"value,omitempty" yaml:"value,omitempty"`
	Container        string `toml:"container,omitempty" json:"container,omitempty" yaml:"container,omitempty"`
	ContainerFocused string `toml:"container_focused,omitempty" json:"containerFocused,omitempty" yaml:"container_focused,omitempty"`
}

// Pair is one declared theme entry. Exactly one of Class or Values is used;
// Values wins when both are set.
type Pair struct {
	Key    string
	Class  string
	Values *Values
}

// Rule is a compiled theme entry.
type Rule struct {
	Key          string
	Pattern      *regexp.Regexp
	Class        string
	ClassFocused string
	Values       *Values
}

// Table is an ordered, read-only list of rules.
type Table struct {
	rules []Rule
}

// New compiles pairs in order. A string entry keyed "<key>Focused" becomes
// the focused class of the string entry keyed "<key>" instead of a rule of
// its own. The convention does not apply to structured entries.
func New(pairs []Pair) (*Table, error) {
	classes := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		if p.Values == nil {
			classes[p.Key] = true
		}
	}

	focused := make(map[string]string)
	consumed := make(map[int]bool)
	for i, p := range pairs {
		base, ok := strings.CutSuffix(p.Key, FocusedSuffix)
		if !ok || base == "" || p.Values != nil || !classes[base] {
			continue
		}
		focused[base] = p.Class
		consumed[i] = true
	}

	t := &Table{}
	for i, p := range pairs {
		if consumed[i] {
			continue
		}
		re, err := regexp.Compile(p.Key)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, p.Key, err)
		}
		r := Rule{Key: p.Key, Pattern: re, Values: p.Values}
		if p.Values == nil {
			r.Class = p.Class
			r.ClassFocused = focused[p.Key]
		}
		t.rules = append(t.rules, r)
	}
	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(pairs []Pair) *Table {
	t, err := New(pairs)
	if err != nil {
		panic(err)
	}
	return t
}

// Rules returns the compiled rules in evaluation order.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	return append([]Rule(nil), t.rules...)
}

// Resolution is the styling chosen for a trigger.
type Resolution struct {
	Matched      bool
	Key          string
	Class        string
	ClassFocused string
	Values       *Values
}

// Resolve returns the first rule whose pattern matches trigger. A nil
// table resolves nothing.
func (t *Table) Resolve(trigger string) Resolution {
	if t == nil {
		return Resolution{}
	}
	for _, r := range t.rules {
		if r.Pattern.MatchString(trigger) {
			return Resolution{
				Matched:      true,
				Key:          r.Key,
				Class:        r.Class,
				ClassFocused: r.ClassFocused,
				Values:       r.Values,
			}
		}
	}
	return Resolution{}
}

// ClassName returns the class list for a mention styled by a class entry.
// The focused class is appended while the mention is selected.
func (r Resolution) ClassName(focused bool) string {
	if r.Class == "" {
		return ""
	}
	classes := []string{r.Class}
	if focused && r.ClassFocused != "" {
		classes = append(classes, r.ClassFocused)
	}
	return strings.TrimSpace(strings.Join(classes, " "))
}

// ContainerClass returns the container class for a structured entry.
func (r Resolution) ContainerClass(focused bool) string {
	if r.Values == nil {
		return ""
	}
	if focused && r.Values.ContainerFocused != "" {
		return r.Values.ContainerFocused
	}
	return r.Values.Container
}

// Default returns the theme used when none is configured. Class names are
// resolved to terminal styles by the UI palette.
func Default() *Table {
	return MustNew([]Pair{
		{Key: "@", Class: "mention mention-user"},
		{Key: "@Focused", Class: "mention-focused"},
		{Key: "#", Class: "mention mention-tag"},
		{Key: "#Focused", Class: "mention-focused"},
		{Key: "due:", Class: "mention mention-due"},
		{Key: "due:Focused", Class: "mention-focused"},
		{Key: "rec:", Values: &Values{
			Trigger:          "mention-trigger",
			Value:            "mention-value",
			Container:        "mention-box",
			ContainerFocused: "mention-box mention-focused",
		}},
		{Key: `\w+:`, Class: "mention mention-generic"},
		{Key: `\w+:Focused`, Class: "mention-focused"},
	})
}
