// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/jeranaias/agentdesk/internal/config"
	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/spf13/cobra"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions carries the persistent flags and the loaded configuration to
// every subcommand.
type rootOptions struct {
	configPath string
	apiURL     string
	debug      bool

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "agentdesk",
		Short: "Chat with remote agents from the terminal",
		Long: `agentdesk lists the agents of a remote API and chats with them.

Run without a subcommand to open the full-screen chat.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.agentdesk/config.toml)")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "agent API base URL")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write debug logs to the log file")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newAgentsCmd(opts),
		newChatCmd(opts),
		newAskCmd(opts),
		newConfigCmd(opts),
		newMockServerCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		return 1
	}
	return 0
}

// setup loads the configuration, applies flag overrides and configures
// logging and colour.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	var cfg *config.Config
	if o.configPath != "" {
		if _, err := os.Stat(o.configPath); errors.Is(err, os.ErrNotExist) {
			// `config init --config PATH` creates the file.
			cfg = config.Default()
			cfg.ApplyEnvOverrides()
		} else {
			loaded, err := config.LoadFromPath(o.configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}
	} else {
		loaded, err := config.Load()
		if loaded == nil {
			return err
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v (using defaults)\n", color.YellowString("Warning:"), err)
		}
		cfg = loaded
	}

	if o.apiURL != "" {
		cfg.API.URL = o.apiURL
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --api-url: %w", err)
		}
	}
	if o.debug {
		cfg.Debug = true
	}

	if err := logging.Setup(cfg.Debug, cfg.LogFile); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.YellowString("Warning:"), err)
	}
	log := logging.For("cli")
	log.WithField("command", cmd.CommandPath()).Debug("starting")

	o.cfg = cfg

	if !isTerminal(cmd.OutOrStdout()) {
		color.NoColor = true
	}
	return nil
}

// watchPath is the config file the TUI watches for live reloads. It is
// empty when no file exists yet.
func (o *rootOptions) watchPath() string {
	if o.configPath != "" {
		return o.configPath
	}
	path, err := config.ConfigPathTOML()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
