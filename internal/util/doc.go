// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across agentdesk.
//
//   - AtomicWriteFile: crash-safe file writes (temp file, fsync, rename)
//   - TruncateWidth / Clock: display-width truncation and HH:MM stamps
package util
