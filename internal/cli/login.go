// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jeranaias/agentdesk/internal/api"
	"github.com/jeranaias/agentdesk/internal/logging"
	"github.com/jeranaias/agentdesk/internal/storage"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.login(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.logout(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Logged out\n", color.GreenString("✓"))
			return nil
		},
	}
}

// login prompts for credentials, exchanges them for a token and keeps the
// token both for this session and for later runs.
func (a *app) login(ctx context.Context, in io.Reader, out io.Writer, email string) error {
	r := bufio.NewReader(in)

	if email == "" {
		fmt.Fprint(out, "Email: ")
		line, err := readLine(r)
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return errors.New("email is required")
	}

	fmt.Fprint(out, "Password: ")
	password, err := readPassword(in, r)
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		if api.IsUnauthorized(err) {
			return errors.New("invalid email or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	a.client.SetToken(token)
	if err := a.kv.Set(storage.KeyAccessToken, token); err != nil {
		return fmt.Errorf("failed to store session token: %w", err)
	}
	if err := a.tokens.Store(token); err != nil {
		logging.For("cli").WithError(err).Warn("token not persisted")
		fmt.Fprintf(out, "%s token not saved: %v\n", color.YellowString("Warning:"), err)
	}

	fmt.Fprintf(out, "%s Logged in as %s\n", color.GreenString("✓"), email)
	return nil
}

func (a *app) logout() error {
	a.client.SetToken("")
	if err := a.kv.Remove(storage.KeyAccessToken); err != nil {
		return err
	}
	return a.tokens.Delete()
}
