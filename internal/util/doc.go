// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the mentions packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes, SafeSubstring, RuneLen: rune-indexed string helpers
//   - TruncateWidth, PadWidth, StringWidth: display-cell aware helpers
//     used by the menu and combobox renderers
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	label := util.TruncateWidth(item.DisplayValue, 24)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
