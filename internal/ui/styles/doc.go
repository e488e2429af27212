// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the palette and lipgloss styles for the agentdesk TUI.

Colors are lipgloss AdaptiveColor values so they follow the terminal's light
or dark background. The Theme type bundles the styles used by the chat
screen and the transcript renderer:

	theme := styles.NewTheme(cfg.UI.Theme)
	fmt.Println(theme.UserBubble.Render("hello"))

A theme mode of "light" or "dark" overrides background detection; "auto"
asks termenv.
*/
package styles
