// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// agentdesk is a terminal chat client for remote conversational agents.
package main

import (
	"os"

	"github.com/jeranaias/agentdesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
