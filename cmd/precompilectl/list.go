// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/luxfi/subnetprecompile/modules"
	"github.com/luxfi/subnetprecompile/registry"
)

const identityKey = "identity"

func precompilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "precompiles",
		Short: "List the precompile address block",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADDRESS\tALWAYS ON\tCONFIG KEY\tFUNCTIONS")
			for _, info := range registry.AllPrecompiles {
				key, functions := "-", 0
				if mod, ok := modules.GetPrecompileModuleByAddress(info.Address); ok {
					key, functions = mod.ConfigKey, len(mod.Contract.Functions())
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%d\n",
					uint8(info.Identity), info.Name, info.Address, info.AlwaysOn, key, functions)
			}
			return w.Flush()
		},
	}
}

func selectorsCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "selectors",
		Short: "Print the selector table of every precompile, or of one",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			mods, err := selectModules(c)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRECOMPILE\tSELECTOR\tSIGNATURE\tMUTABILITY\tGAS\tRETURNS")
			for _, mod := range mods {
				for _, fn := range mod.Contract.Functions() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
						mod.Identity, fn.Selector, fn.Signature, fn.Mutability, fn.Gas, typeList(fn.Outputs))
				}
			}
			return w.Flush()
		},
	}
	c.Flags().String(identityKey, "", "Only print the precompile with this name")
	return c
}

// selectModules returns the module named by --identity, or all of them.
func selectModules(c *cobra.Command) ([]modules.Module, error) {
	name, err := c.Flags().GetString(identityKey)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return modules.RegisteredModules(), nil
	}
	id, ok := registry.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", registry.ErrUnknownIdentity, name)
	}
	mod, ok := modules.GetPrecompileModuleByAddress(id.Address())
	if !ok {
		return nil, fmt.Errorf("no module registered for %s", id)
	}
	return []modules.Module{mod}, nil
}
