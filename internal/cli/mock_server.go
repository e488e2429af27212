// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/jeranaias/agentdesk/internal/mockapi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newMockServerCmd() *cobra.Command {
	var (
		addr    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory agent API for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			srv := &http.Server{
				Handler:           mockapi.New(mockapi.Options{Verbose: verbose}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Mock agent API on %s\n", color.CyanString("http://%s", ln.Addr()))
			fmt.Fprintln(cmd.OutOrStdout(), "Sign in with demo@example.com / demo. Press Ctrl+C to stop.")

			done := make(chan struct{})
			go func() {
				defer close(done)
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			<-done
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "listen address")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every request")
	return cmd
}
