// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package termview turns revealed HTML into terminal text.
//
// Renderer lays out an *html.Node transcript (as built by
// reveal.NodeSurface) as styled, wrapped lines for the TUI viewport.
// StreamSurface is a reveal.Surface that writes text straight to an
// io.Writer, used by the line-mode REPL.
package termview
