// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset [provider]",
		Short: "Reset provider error counters",
		Long:  "Clear error counters and cooldowns for one provider, or for all providers when no name is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReset,
	}

	cmd.Flags().String("address", defaultGatewayAddr, "gateway address")

	return cmd
}

func runReset(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("address")
	gw := newGatewayClient(addr)

	path := "/api/v1/providers/reset"
	target := "all providers"
	if len(args) == 1 {
		path = "/api/v1/providers/" + args[0] + "/reset"
		target = args[0]
	}

	if err := gw.postJSON(path, nil, nil); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reset error counters for %s\n", target)
	return nil
}
