// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/jeranaias/agentdesk/internal/ui/chat"
	"github.com/jeranaias/agentdesk/internal/ui/styles"
	"github.com/spf13/cobra"
)

var errNoTerminal = errors.New("the chat window needs an interactive terminal (try `agentdesk chat` or `agentdesk ask`)")

// runTUI runs the full-screen chat. When the chat exits because the API
// wants a login, the login prompt runs on the plain terminal and the chat
// starts again.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if !isTerminal(in) || !isTerminal(out) {
		return errNoTerminal
	}

	a, err := newApp(opts.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	log := logging.For("tui")

	for {
		m := chat.New(chat.Options{
			Config:     opts.cfg,
			ConfigPath: opts.watchPath(),
			Agents:     a.dir,
			API:        a.client,
			Extractor:  a.extractor,
			Store:      a.conversations,
		})

		final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		if err != nil {
			return fmt.Errorf("chat window failed: %w", err)
		}
		fm, ok := final.(chat.Model)
		if !ok || !fm.LoginRequired() {
			return nil
		}

		log.Info("login required, prompting")
		fmt.Fprintln(out, styles.RenderWarning("Authentication required"))
		for {
			err := a.login(ctx, in, out, "")
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(out, styles.RenderError(err.Error()))
		}
	}
}
