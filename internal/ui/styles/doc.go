// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the mentions editor.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

Accent colors:

  - Purple - Primary accent, selections and focused mentions
  - Cyan - Brand color, user mentions and menu borders
  - Emerald - Tags and success states
  - Amber - Due dates, creatable entries and warnings
  - Rose - Errors

Mention chips have their own foreground/background pairs
(MentionUserFg/Bg, MentionTagFg/Bg, MentionDueFg/Bg, MentionGenericFg/Bg).

# Theme (theme.go)

Theme bundles the editor, menu and status bar styles together with the
class palette. Mention themes name CSS-like class lists such as
"mention mention-user mention-focused"; Theme.Class composes the
registered style of each token into one terminal style:

	theme := styles.NewTheme()
	chip := theme.Class("mention mention-user").Render("@John")

Additional tokens can be registered with SetClass so that user themes
loaded from the config file resolve to something visible.
*/
package styles
