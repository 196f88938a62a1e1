// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/draftforge-dev/draftforge/pkg/health"
	"github.com/spf13/cobra"
)

// defaultGatewayAddr matches the default server.listen config value.
const defaultGatewayAddr = "127.0.0.1:18650"

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show provider fleet status",
		Long:  "Query the running gateway for the health of every registered provider.",
		RunE:  runStatus,
	}

	cmd.Flags().String("address", defaultGatewayAddr, "gateway address to check")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("address")
	out := cmd.OutOrStdout()

	gw := newGatewayClient(addr)
	var body struct {
		Providers map[string]health.Snapshot `json:"providers"`
	}
	if err := gw.getJSON("/api/v1/providers", &body); err != nil {
		if dferr.HasCode(err, dferr.CodeCLIGatewayNotRunning) {
			_, _ = fmt.Fprintf(out, "Gateway at %s is not running (connection refused)\n", addr)
			return nil
		}
		return err
	}

	snapshots := make([]health.Snapshot, 0, len(body.Providers))
	for _, s := range body.Providers {
		snapshots = append(snapshots, s)
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].PriorityRank < snapshots[j].PriorityRank
	})

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROVIDER\tPRIORITY\tMODEL\tSTATE\tFAILURES\tLAST ERROR")
	for _, s := range snapshots {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n",
			s.Provider, s.PriorityRank, s.Model, snapshotState(s), s.ConsecutiveFailures, s.LastError)
	}
	return w.Flush()
}

func snapshotState(s health.Snapshot) string {
	switch {
	case !s.Available:
		return "unavailable"
	case !s.Enabled:
		return "disabled"
	default:
		return "ok"
	}
}
