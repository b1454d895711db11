// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package balancetransfer

import (
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/modules"
	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/registry"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "balanceTransferConfig"

var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      registry.BalanceTransfer.Address(),
	Identity:     registry.BalanceTransfer,
	Contract:     Contract,
	Configurator: &configurator{},
}

type configurator struct{}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}

func (*configurator) MakeConfig() precompileconfig.Config {
	return &Config{}
}

// Configure is a no-op: the precompile is always on and keeps no EVM state.
func (*configurator) Configure(precompileconfig.Config, contract.StateDB, contract.BlockContext) error {
	return nil
}

// Config implements the precompileconfig.Config interface
type Config struct {
	Upgrade precompileconfig.Upgrade `json:"upgrade,omitempty"`
}

func (*Config) Key() string {
	return ConfigKey
}

func (c *Config) Timestamp() *uint64 {
	return c.Upgrade.Timestamp()
}

func (c *Config) IsDisabled() bool {
	return c.Upgrade.Disable
}

func (c *Config) Equal(cfg precompileconfig.Config) bool {
	other, ok := cfg.(*Config)
	if !ok {
		return false
	}
	return c.Upgrade.Equal(&other.Upgrade)
}

func (*Config) Verify() error {
	return nil
}
