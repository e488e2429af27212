// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/jeranaias/agentdesk/internal/extract"
	"github.com/jeranaias/agentdesk/internal/model"
	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var (
		agentID string
		file    string
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "ask MESSAGE...",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			agent, err := a.resolveAgent(ctx, agentID)
			if err != nil {
				return err
			}

			if file != "" {
				res, err := a.extractor.Extract(ctx, expandHome(file))
				if err != nil {
					if errors.Is(err, extract.ErrUnsupported) {
						return fmt.Errorf("unsupported file type: %s", file)
					}
					return fmt.Errorf("failed to read %s: %w", file, err)
				}
				if err := a.client.Ingest(ctx, res.FileName, res.Text); err != nil {
					return fmt.Errorf("failed to upload %s: %w", res.FileName, err)
				}
			}

			text := strings.Join(args, " ")
			msgs := append(model.Seed(), model.UserMessage(text))
			reply, err := a.client.Chat(ctx, agent.ID, model.Outbound(msgs))
			if err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if raw || !isTerminal(out) {
				_, err := fmt.Fprintln(out, reply)
				return err
			}
			return printMarkdown(out, reply, opts.cfg.UI.Theme)
		},
	}
	cmd.Flags().StringVarP(&agentID, "agent", "a", "", "agent id")
	cmd.Flags().StringVar(&file, "file", "", "upload a file before asking")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the reply as plain markdown")
	return cmd
}

// printMarkdown renders md for the terminal with glamour, falling back to
// the plain text when rendering fails.
func printMarkdown(w io.Writer, md, theme string) error {
	style := glamour.WithAutoStyle()
	if theme == "dark" || theme == "light" {
		style = glamour.WithStandardStyle(theme)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(terminalWidth(w)))
	if err == nil {
		if rendered, rerr := r.Render(md); rerr == nil {
			_, err = io.WriteString(w, rendered)
			return err
		}
	}
	_, err = fmt.Fprintln(w, md)
	return err
}
