// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// precompilectl lists the subnet precompiles, their selector tables and
// ABIs, and simulates calls against an in-memory chain built from a genesis.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/luxfi/subnetprecompile/precompiles"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "precompilectl",
		Short:         "Inspect and simulate subnet precompiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		precompilesCommand(),
		selectorsCommand(),
		abiCommand(),
		callCommand(),
	)
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "precompilectl failed: %v\n", err)
		os.Exit(1)
	}
}
