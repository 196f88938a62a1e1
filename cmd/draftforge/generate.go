// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/draftforge-dev/draftforge/internal/provider"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate text through the failover router",
		Long:  "Send a prompt to the running gateway and print the generated text. The gateway picks the best available provider and fails over automatically.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGenerate,
	}

	cmd.Flags().String("address", defaultGatewayAddr, "gateway address")
	cmd.Flags().Int("max-tokens", 0, "output token budget (0 uses the provider cap)")
	cmd.Flags().Float64("temperature", 0, "sampling temperature")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("address")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	prompt := strings.Join(args, " ")

	gw := newGatewayClient(addr)

	body := map[string]any{"prompt": prompt}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}
	if temperature > 0 {
		body["temperature"] = temperature
	}

	var res provider.Result
	if err := gw.postJSON("/api/v1/generate", body, &res); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "provider=%s model=%s tokens=%d\n", res.Provider, res.Model, res.ApproxTokens)
	return nil
}
