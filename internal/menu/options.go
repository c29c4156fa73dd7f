// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package menu

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/mentions-tui/internal/matcher"
	"github.com/jeranaias/mentions-tui/internal/mention"
)

var (
	// ErrConflictingSources is returned when both static items and a
	// search function are configured.
	ErrConflictingSources = errors.New("items and search are mutually exclusive")

	// ErrNoTriggers is returned when no trigger is configured or derivable
	// from the static items.
	ErrNoTriggers = errors.New("no triggers configured")
)

// DefaultSearchDelay is the debounce interval before a lookup is issued.
const DefaultSearchDelay = 250 * time.Millisecond

// DefaultMenuItemLimit is the number of candidates shown per trigger.
const DefaultMenuItemLimit = 5

// NamePlaceholder is replaced by the query in creatable labels.
const NamePlaceholder = "{{name}}"

// SourceItem is a suggestion supplied by the caller, either statically or
// from a search.
type SourceItem struct {
	Value string       `json:"value" yaml:"value" toml:"value"`
	Data  mention.Data `json:"data,omitempty" yaml:"data,omitempty" toml:"data,omitempty"`
}

// Values wraps plain strings as source items.
func Values(values ...string) []SourceItem {
	out := make([]SourceItem, len(values))
	for i, v := range values {
		out[i] = SourceItem{Value: v}
	}
	return out
}

// SearchFunc looks up suggestions for a trigger and query. It runs outside
// the event loop; retries and timeouts are the caller's.
type SearchFunc func(ctx context.Context, trigger, query string) ([]SourceItem, error)

// WithRateLimit wraps search so calls are issued at most at r per second
// with the given burst. A call waits for a token or for ctx.
func WithRateLimit(search SearchFunc, r rate.Limit, burst int) SearchFunc {
	limiter := rate.NewLimiter(r, burst)
	return func(ctx context.Context, trigger, query string) ([]SourceItem, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return search(ctx, trigger, query)
	}
}

// Limit bounds the candidate list. Zero means DefaultMenuItemLimit.
type Limit int

// Unlimited disables truncation.
const Unlimited Limit = -1

// Max returns the effective maximum, or -1 for no maximum.
func (l Limit) Max() int {
	switch {
	case l == 0:
		return DefaultMenuItemLimit
	case l < 0:
		return -1
	default:
		return int(l)
	}
}

// Creatable controls the synthetic "create" entry.
type Creatable struct {
	Enabled bool
	// Label is a template for the entry's display value; NamePlaceholder
	// is replaced by the query. Empty means the raw query.
	Label string
}

// LabelFor returns the display label for query.
func (c Creatable) LabelFor(query string) string {
	if c.Label == "" {
		return query
	}
	return strings.ReplaceAll(c.Label, NamePlaceholder, query)
}

// Options configures an Orchestrator.
type Options struct {
	// Triggers are matcher patterns in declaration order. With static
	// Items they default to the item keys.
	Triggers []string

	// Items maps a trigger to its static suggestions.
	Items map[string][]SourceItem

	// Search looks suggestions up asynchronously. Mutually exclusive with
	// Items.
	Search      SearchFunc
	SearchDelay time.Duration

	Punctuation     string
	PreTriggerChars string
	AllowSpaces     bool
	Enclosure       string

	ShowMentionsOnDelete             bool
	ShowCurrentMentionsAsSuggestions bool
	InsertOnBlur                     bool

	MenuItemLimit  Limit
	MenuItemLimits map[string]Limit

	Creatable       Creatable
	CreatableLabels map[string]Creatable

	Combobox bool
	// ComboboxOpen, when non-nil, puts combobox visibility under the
	// host's control: the panel is open exactly when it points to true,
	// whatever the focus or Escape. Ignored outside combobox mode.
	ComboboxOpen            *bool
	ComboboxAdditionalItems []Item

	OnMenuOpen            func()
	OnMenuClose           func()
	OnMenuItemSelect      func(item Item)
	OnComboboxOpen        func()
	OnComboboxClose       func()
	OnComboboxItemSelect  func(item Item)
	OnComboboxFocusChange func(item *Item)
}

// DefaultOptions returns the defaults: spaces allowed, current mentions
// suggested, insert on blur, five items, 250ms search delay.
func DefaultOptions() Options {
	return Options{
		SearchDelay:                      DefaultSearchDelay,
		AllowSpaces:                      true,
		ShowCurrentMentionsAsSuggestions: true,
		InsertOnBlur:                     true,
		MenuItemLimit:                    DefaultMenuItemLimit,
	}
}

// Validate reports configuration errors.
func (o Options) Validate() error {
	if o.Items != nil && o.Search != nil {
		return ErrConflictingSources
	}
	if len(o.triggers()) == 0 {
		return ErrNoTriggers
	}
	return nil
}

// triggers returns the configured triggers, or the static item keys in
// sorted order when none are configured.
func (o Options) triggers() []string {
	if len(o.Triggers) > 0 || o.Search != nil {
		return o.Triggers
	}
	keys := make([]string, 0, len(o.Items))
	for k := range o.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o Options) matcherConfig() matcher.Config {
	return matcher.Config{
		Triggers:        o.triggers(),
		Punctuation:     o.Punctuation,
		PreTriggerChars: o.PreTriggerChars,
		AllowSpaces:     o.AllowSpaces,
		Enclosure:       o.Enclosure,
	}
}

// Per-trigger settings are looked up by the declared pattern first, then
// by the matched trigger text.

func (o Options) itemsFor(m matcher.Match) []SourceItem {
	if items, ok := o.Items[m.Pattern]; ok {
		return items
	}
	return o.Items[m.Trigger]
}

func (o Options) limitFor(m matcher.Match) int {
	if l, ok := o.MenuItemLimits[m.Pattern]; ok {
		return l.Max()
	}
	if l, ok := o.MenuItemLimits[m.Trigger]; ok {
		return l.Max()
	}
	return o.MenuItemLimit.Max()
}

func (o Options) creatableFor(m matcher.Match) Creatable {
	if c, ok := o.CreatableLabels[m.Pattern]; ok {
		return c
	}
	if c, ok := o.CreatableLabels[m.Trigger]; ok {
		return c
	}
	return o.Creatable
}

func (o Options) searchDelay() time.Duration {
	if o.SearchDelay <= 0 {
		return DefaultSearchDelay
	}
	return o.SearchDelay
}
