// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editor provides the Bubble Tea model of the interactive mention
// editor.
//
// Key presses are translated into document editor commands; after every
// dispatch the menu orchestrator is synced and its state pushed into the
// suggestion popup. Messages the model does not handle itself (debounce
// timers, lookup results, spinner ticks) are forwarded to the orchestrator
// and the popup.
package editor
