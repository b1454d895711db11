// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adminutils

import (
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/enablement"
	"github.com/luxfi/subnetprecompile/modules"
	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/registry"
)

var _ contract.Configurator = (*configurator)(nil)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "adminUtilsConfig"

var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      registry.AdminUtils.Address(),
	Identity:     registry.AdminUtils,
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

// Configure grants the admin role to every configured address. Existing
// admins are kept.
func (*configurator) Configure(cfg precompileconfig.Config, state contract.StateDB, _ contract.BlockContext) error {
	config, ok := cfg.(*Config)
	if !ok {
		return fmt.Errorf("unexpected config type %T for %s", cfg, ConfigKey)
	}
	for _, addr := range config.AdminAddresses {
		enablement.SetRole(state, addr, enablement.AdminRole)
	}
	return nil
}

// Config seeds the enablement admins.
type Config struct {
	precompileconfig.Upgrade
	AdminAddresses []common.Address `json:"adminAddresses,omitempty"`
}

func (*Config) Key() string {
	return ConfigKey
}

// IsDisabled is always false: the admin entry point cannot be turned off.
func (*Config) IsDisabled() bool {
	return false
}

func (c *Config) Equal(cfg precompileconfig.Config) bool {
	other, ok := cfg.(*Config)
	if !ok {
		return false
	}
	return c.Upgrade.Equal(&other.Upgrade) && slices.Equal(c.AdminAddresses, other.AdminAddresses)
}

// Verify reports every duplicate or zero admin address.
func (c *Config) Verify() error {
	var errs *multierror.Error
	if c.Disable {
		errs = multierror.Append(errs, fmt.Errorf("%s cannot be disabled", registry.AdminUtils))
	}
	seen := make(map[common.Address]bool, len(c.AdminAddresses))
	for i, addr := range c.AdminAddresses {
		switch {
		case addr == (common.Address{}):
			errs = multierror.Append(errs, fmt.Errorf("adminAddresses[%d]: zero address", i))
		case seen[addr]:
			errs = multierror.Append(errs, fmt.Errorf("adminAddresses[%d]: duplicate address %s", i, addr))
		}
		seen[addr] = true
	}
	return errs.ErrorOrNil()
}
