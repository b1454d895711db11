// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package enablement

import (
	"fmt"

	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/registry"
)

var _ contract.Configurator = (*Configurator)(nil)

// Configurator applies a precompileconfig.Toggle to the flag of one
// toggleable precompile.
type Configurator struct {
	Key      string
	Identity registry.Identity
}

func (c *Configurator) MakeConfig() precompileconfig.Config {
	return precompileconfig.NewToggle(c.Key)
}

func (c *Configurator) Configure(cfg precompileconfig.Config, state contract.StateDB, _ contract.BlockContext) error {
	toggle, ok := cfg.(*precompileconfig.Toggle)
	if !ok {
		return fmt.Errorf("unexpected config type %T for %s", cfg, c.Key)
	}
	return Initialize(state, c.Identity, !toggle.IsDisabled())
}
