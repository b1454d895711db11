// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	gethabi "github.com/luxfi/geth/accounts/abi"
	"github.com/spf13/cobra"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
)

type abiArgument struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type abiEntry struct {
	Type            string        `json:"type"`
	Name            string        `json:"name"`
	Inputs          []abiArgument `json:"inputs"`
	Outputs         []abiArgument `json:"outputs"`
	StateMutability string        `json:"stateMutability"`
}

func abiCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "abi",
		Short: "Print the solidity JSON ABI of every precompile, or of one",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			mods, err := selectModules(c)
			if err != nil {
				return err
			}
			out := make(map[string][]abiEntry, len(mods))
			for _, mod := range mods {
				entries, err := tableABI(mod.Contract)
				if err != nil {
					return err
				}
				out[mod.Identity.String()] = entries
			}
			enc := json.NewEncoder(c.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	c.Flags().String(identityKey, "", "Only print the precompile with this name")
	return c
}

// tableABI renders [table] as JSON ABI entries and checks that a solidity
// ABI parser derives the same selectors.
func tableABI(table *contract.Table) ([]abiEntry, error) {
	fns := table.Functions()
	entries := make([]abiEntry, len(fns))
	for i, fn := range fns {
		entries[i] = abiEntry{
			Type:            "function",
			Name:            fn.Name,
			Inputs:          arguments(fn.Inputs),
			Outputs:         arguments(fn.Outputs),
			StateMutability: fn.Mutability.String(),
		}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	parsed, err := gethabi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", table.Identity(), err)
	}
	for _, fn := range fns {
		method, err := parsed.MethodById(fn.Selector[:])
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", table.Identity(), fn.Signature, err)
		}
		if method.Sig != fn.Signature {
			return nil, fmt.Errorf("%s: selector %s resolves to %s, want %s", table.Identity(), fn.Selector, method.Sig, fn.Signature)
		}
	}
	return entries, nil
}

func arguments(types []abi.Type) []abiArgument {
	args := make([]abiArgument, len(types))
	for i, t := range types {
		args[i] = abiArgument{Type: t.String()}
	}
	return args
}

func typeList(types []abi.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return "(" + strings.Join(names, ",") + ")"
}
