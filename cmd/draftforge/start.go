// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/draftforge-dev/draftforge/internal/config"
	"github.com/draftforge-dev/draftforge/internal/secrets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the draftforge gateway",
		Long:  "Load configuration, resolve secrets, wire all subsystems, and start the HTTP server.",
		RunE:  runStart,
	}

	cmd.Flags().String("listen", "", "override listen address (host:port)")
	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func runStart(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()

	// Swap keyring:// URIs for real secret values before unmarshalling.
	secrets.ResolveViperSecrets(v, secretStoreFactory())

	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := WireGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := gw.Close(); cerr != nil {
			slog.Warn("shutdown cleanup error", "error", cerr)
		}
	}()

	slog.Info("starting draftforge gateway", "listen", cfg.Server.Listen, "providers", gw.Registry.Len())
	return gw.Start(ctx)
}
