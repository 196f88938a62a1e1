// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/draftforge-dev/draftforge/internal/content"
	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
	"github.com/spf13/cobra"
)

func newDeliverableCmd() *cobra.Command {
	kinds := make([]string, 0, len(content.Kinds()))
	for _, k := range content.Kinds() {
		kinds = append(kinds, string(k))
	}

	cmd := &cobra.Command{
		Use:   "deliverable <kind>",
		Short: "Build a marketing deliverable",
		Long:  "Build a structured marketing deliverable for a brief. Kinds: " + strings.Join(kinds, ", ") + ".",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeliverable,
	}

	cmd.Flags().String("address", defaultGatewayAddr, "gateway address")
	cmd.Flags().String("segment", "", "target market segment")
	cmd.Flags().String("product", "", "product or service name")
	cmd.Flags().String("concept", "", "concept to prove (visual-proof only)")

	return cmd
}

func runDeliverable(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("address")
	segment, _ := cmd.Flags().GetString("segment")
	product, _ := cmd.Flags().GetString("product")
	concept, _ := cmd.Flags().GetString("concept")

	if segment == "" && product == "" {
		return dferr.New(dferr.CodeCLIInputInvalid, "at least one of --segment or --product is required")
	}

	gw := newGatewayClient(addr)

	brief := content.Brief{Segment: segment, Product: product, Concept: concept}
	var d content.Deliverable
	if err := gw.postJSON("/api/v1/deliverables/"+args[0], brief, &d); err != nil {
		return err
	}

	if d.Fallback {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: generation failed, payload built from the fallback template")
	}

	raw, err := json.MarshalIndent(d.Payload, "", "  ")
	if err != nil {
		return dferr.Errorf(dferr.CodeCLIResponseInvalid, "encoding payload: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return nil
}
