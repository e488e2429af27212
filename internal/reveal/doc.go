// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal rebuilds sanitized HTML in a destination tree one character
// at a time.
//
// The engine walks the parsed fragment depth-first. Elements are cloned
// (tag and attributes, never children) into the destination as soon as the
// walk reaches them; text is appended rune by rune into a dedicated live
// text node, one rune per tick, and the destination is scrolled to the
// bottom after every append. Comments and other node kinds are skipped.
//
// # Key Types
//
//   - Surface: the destination tree builder (a terminal view, a test tree)
//   - Scheduler: delivers ticks (ManualScheduler, LoopScheduler, or the TUI)
//   - Engine: Reveal (animated) and Render (instant) over the same walk
//   - Task: one running reveal; Cancel stops it for good
//   - Queue: runs reveals for one transcript strictly one after another
//
// # Usage
//
//	surface := reveal.NewNodeSurface()
//	engine := reveal.NewEngine(8*time.Millisecond, sched)
//	task, err := engine.Reveal(safeHTML, surface, surface.Root, func() {
//	    // every node is on screen
//	})
//
// Once complete, the destination is structurally identical to what Render
// produces for the same input.
package reveal
