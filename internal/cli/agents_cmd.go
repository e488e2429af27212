// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/jeranaias/agentdesk/internal/api"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newAgentsCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the available agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.listAgents(cmd.Context())
			if err != nil {
				return err
			}
			return printAgents(cmd.OutOrStdout(), list, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	return cmd
}

type agentRow struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func rowsFor(list []api.Agent) []agentRow {
	rows := make([]agentRow, 0, len(list))
	for _, ag := range list {
		row := agentRow{ID: ag.ID, Name: ag.DisplayName()}
		if n := len(ag.Revisions); n > 0 {
			row.Description = ag.Revisions[n-1].Description
		}
		rows = append(rows, row)
	}
	return rows
}

func printAgents(w io.Writer, list []api.Agent, format string) error {
	rows := rowsFor(list)

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		if len(rows) == 0 {
			fmt.Fprintln(w, "No agents available")
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		bold := color.New(color.Bold)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", bold.Sprint("ID"), bold.Sprint("NAME"), bold.Sprint("DESCRIPTION"))
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", color.CyanString(r.ID), r.Name, r.Description)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (use table, json or yaml)", format)
	}
}
