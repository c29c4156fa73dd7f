// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package matcher

import (
	"unicode"
)

// Segment is a run of plain text or a recognized mention.
type Segment struct {
	Text    string
	Trigger string
	Value   string
}

// IsMention reports whether the segment is a mention.
func (s Segment) IsMention() bool {
	return s.Trigger != ""
}

// String returns the text the segment was parsed from (enclosures aside).
func (s Segment) String() string {
	if s.IsMention() {
		return s.Trigger + s.Value
	}
	return s.Text
}

// Split breaks plain text into text and mention segments, e.g.
// "Hey @John, see #urgent" yields "Hey ", @John, ", see ", #urgent.
// Adjacent text is merged; empty text segments are never produced.
func (m *Matcher) Split(text string) []Segment {
	runes := []rune(text)
	offsets := byteOffsets(text)

	var segments []Segment
	textStart := 0
	flush := func(end int) {
		if end > textStart {
			segments = append(segments, Segment{Text: string(runes[textStart:end])})
		}
	}

	for i := 0; i < len(runes); {
		if !m.atBoundary(runes, i) {
			i++
			continue
		}
		trigger, _, n := m.triggerAt(text, offsets, i)
		if n == 0 {
			i++
			continue
		}
		value, end := m.value(runes, i+n)
		if value == "" {
			i++
			continue
		}
		flush(i)
		segments = append(segments, Segment{Trigger: trigger, Value: value})
		i = end
		textStart = end
	}
	flush(len(runes))
	return segments
}

// value reads a mention value starting at rune index j and returns it with
// the index just past it.
func (m *Matcher) value(runes []rune, j int) (string, int) {
	if j >= len(runes) {
		return "", j
	}
	if m.enclosure != 0 && runes[j] == m.enclosure {
		for k := j + 1; k < len(runes); k++ {
			if runes[k] == '\n' {
				return "", j
			}
			if runes[k] == m.enclosure {
				return string(runes[j+1 : k]), k + 1
			}
		}
		return "", j
	}

	end := j
	for end < len(runes) && end-j < MaxQueryLength {
		r := runes[end]
		if m.punct[r] || unicode.IsSpace(r) {
			break
		}
		end++
	}
	value := string(runes[j:end])
	if loc := m.anywhere.FindStringIndex(value); loc != nil {
		value = value[:loc[0]]
		end = j + len([]rune(value))
	}
	return value, end
}
