// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package matcher finds trigger+query spans (such as "@Jo" or "due:tom") in
// the text preceding the caret.
//
// Matching is deterministic pattern matching: a trigger must sit at a word
// boundary, and the query after it is limited by the punctuation set, the
// space policy and an optional enclosure character. All functions are pure.
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultPunctuation is the set of characters that end a query.
const DefaultPunctuation = `.,*?$|#{}()^[]\/!%'"~=<>_:;`

// DefaultPreTriggerChars are non-space characters that may directly precede
// a trigger, e.g. "(@John".
const DefaultPreTriggerChars = "("

// MaxQueryLength is the longest query, in runes, that still counts as a match.
const MaxQueryLength = 75

var (
	// ErrNoTriggers is returned when a matcher is built without triggers.
	ErrNoTriggers = errors.New("no triggers configured")

	// ErrInvalidTrigger is returned when a trigger pattern does not compile.
	ErrInvalidTrigger = errors.New("invalid trigger pattern")
)

// Config controls how triggers and queries are recognized.
type Config struct {
	// Triggers are regular expression sources, in declaration order.
	// Plain strings like "@" or "due:" are valid patterns; use Literal
	// for triggers containing regexp metacharacters.
	Triggers []string

	// Punctuation ends a query. Empty means DefaultPunctuation.
	Punctuation string

	// PreTriggerChars may directly precede a trigger. Empty means
	// DefaultPreTriggerChars.
	PreTriggerChars string

	// AllowSpaces lets a query contain single spaces.
	AllowSpaces bool

	// Enclosure is a character that wraps queries containing spaces,
	// e.g. `"` for @"John Doe". Only honored when AllowSpaces is set.
	Enclosure string
}

// Match is the active trigger/query span. Start and End are rune offsets in
// the scanned text; End is the caret.
type Match struct {
	// Trigger is the matched trigger text, e.g. "due:".
	Trigger string
	// Pattern is the declared trigger that produced the match, e.g. `\w+:`.
	Pattern string
	Query   string
	Start   int
	End     int

	// Text is the exact text covered by [Start, End).
	Text string
}

// Len returns the number of runes covered by the match.
func (m Match) Len() int {
	return m.End - m.Start
}

// Literal quotes s so it can be used as a trigger that matches itself.
func Literal(s string) string {
	return regexp.QuoteMeta(s)
}

// Matcher is a compiled Config.
type Matcher struct {
	cfg       Config
	triggers  []*regexp.Regexp
	anywhere  *regexp.Regexp
	punct     map[rune]bool
	pre       map[rune]bool
	enclosure rune
}

// New compiles cfg into a Matcher.
func New(cfg Config) (*Matcher, error) {
	if len(cfg.Triggers) == 0 {
		return nil, ErrNoTriggers
	}
	if cfg.Punctuation == "" {
		cfg.Punctuation = DefaultPunctuation
	}
	if cfg.PreTriggerChars == "" {
		cfg.PreTriggerChars = DefaultPreTriggerChars
	}

	m := &Matcher{
		cfg:   cfg,
		punct: runeSet(cfg.Punctuation),
		pre:   runeSet(cfg.PreTriggerChars),
	}

	for _, t := range cfg.Triggers {
		if t == "" {
			return nil, fmt.Errorf("%w: empty trigger", ErrInvalidTrigger)
		}
		re, err := regexp.Compile(`^(?:` + t + `)`)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidTrigger, t, err)
		}
		re.Longest()
		m.triggers = append(m.triggers, re)
	}
	m.anywhere = regexp.MustCompile(`(?:` + strings.Join(cfg.Triggers, "|") + `)`)

	if cfg.AllowSpaces && cfg.Enclosure != "" {
		m.enclosure, _ = utf8.DecodeRuneInString(cfg.Enclosure)
	}
	return m, nil
}

// MustNew is like New but panics on error. Intended for fixed trigger sets.
func MustNew(cfg Config) *Matcher {
	m, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return m
}

// Find is a convenience wrapper that compiles cfg and scans text.
// An invalid configuration never matches.
func Find(text string, caret int, cfg Config) (Match, bool) {
	m, err := New(cfg)
	if err != nil {
		return Match{}, false
	}
	return m.Find(text, caret)
}

// Config returns the effective configuration, defaults applied.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Triggers returns the trigger patterns in declaration order.
func (m *Matcher) Triggers() []string {
	return append([]string(nil), m.cfg.Triggers...)
}

// Find returns the match whose trigger most closely precedes caret (a rune
// offset into text). Text after the caret is ignored.
func (m *Matcher) Find(text string, caret int) (Match, bool) {
	runes := []rune(text)
	if caret < 0 || caret > len(runes) {
		caret = len(runes)
	}
	before := string(runes[:caret])
	offsets := byteOffsets(before)

	for i := caret - 1; i >= 0; i-- {
		if !m.atBoundary(runes, i) {
			continue
		}
		trigger, pattern, n := m.triggerAt(before, offsets, i)
		if n == 0 {
			continue
		}
		// The nearest trigger at a valid boundary decides the outcome; an
		// earlier one would cover the same invalid text.
		query, ok := m.query(runes[i+n : caret])
		if !ok {
			return Match{}, false
		}
		return Match{
			Trigger: trigger,
			Pattern: pattern,
			Query:   query,
			Start:   i,
			End:     caret,
			Text:    string(runes[i:caret]),
		}, true
	}
	return Match{}, false
}

// atBoundary reports whether a trigger may start at rune index i.
func (m *Matcher) atBoundary(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev := runes[i-1]
	return unicode.IsSpace(prev) || m.punct[prev] || m.pre[prev]
}

// triggerAt returns the longest trigger match starting at rune index i, the
// declared pattern that produced it and its length in runes. Ties go to the
// earliest declared trigger.
func (m *Matcher) triggerAt(s string, offsets []int, i int) (string, string, int) {
	rest := s[offsets[i]:]
	best, pattern, bestLen := "", "", 0
	for k, re := range m.triggers {
		loc := re.FindStringIndex(rest)
		if loc == nil || loc[1] == 0 {
			continue
		}
		n := utf8.RuneCountInString(rest[:loc[1]])
		if n > bestLen {
			best, pattern, bestLen = rest[:loc[1]], m.cfg.Triggers[k], n
		}
	}
	return best, pattern, bestLen
}

// query validates the runes between the trigger and the caret and returns
// the query they spell.
func (m *Matcher) query(q []rune) (string, bool) {
	if len(q) > MaxQueryLength {
		return "", false
	}
	if m.enclosure != 0 && len(q) > 0 && q[0] == m.enclosure {
		inner := q[1:]
		for k, r := range inner {
			if r == '\n' {
				return "", false
			}
			if r == m.enclosure {
				// Closed enclosure must be the last thing before the caret.
				if k != len(inner)-1 {
					return "", false
				}
				return string(inner[:k]), true
			}
		}
		return string(inner), true
	}

	for k, r := range q {
		switch {
		case m.punct[r]:
			return "", false
		case unicode.IsSpace(r):
			if !m.cfg.AllowSpaces || r == '\n' || k == 0 || unicode.IsSpace(q[k-1]) {
				return "", false
			}
		}
	}
	if m.anywhere.MatchString(string(q)) {
		return "", false
	}
	return string(q), true
}

func runeSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}

// byteOffsets maps rune index to byte offset; the final entry is len(s).
func byteOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
