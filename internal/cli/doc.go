// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the agentdesk commands.
//
// The root command starts the full-screen chat when stdin and stdout are
// terminals. The other commands work without a terminal:
//
//	agentdesk login | logout
//	agentdesk agents [--format table|json|yaml]
//	agentdesk chat --agent ID
//	agentdesk ask --agent ID [--raw] [--file PATH] MESSAGE
//	agentdesk config show | path | init
//	agentdesk mock-server [--addr HOST:PORT]
//	agentdesk version
package cli
