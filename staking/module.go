// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package staking

import (
	"github.com/luxfi/subnetprecompile/enablement"
	"github.com/luxfi/subnetprecompile/modules"
	"github.com/luxfi/subnetprecompile/registry"
)

// ConfigKeys used in json config files to specify the two staking precompiles.
const (
	ConfigKey   = "stakingConfig"
	ConfigKeyV2 = "stakingV2Config"
)

var (
	Module = modules.Module{
		ConfigKey:    ConfigKey,
		Address:      registry.Staking.Address(),
		Identity:     registry.Staking,
		Contract:     ContractV1,
		Configurator: &enablement.Configurator{Key: ConfigKey, Identity: registry.Staking},
	}

	ModuleV2 = modules.Module{
		ConfigKey:    ConfigKeyV2,
		Address:      registry.StakingV2.Address(),
		Identity:     registry.StakingV2,
		Contract:     ContractV2,
		Configurator: &enablement.Configurator{Key: ConfigKeyV2, Identity: registry.StakingV2},
	}
)

func init() {
	for _, m := range []modules.Module{Module, ModuleV2} {
		if err := modules.RegisterModule(m); err != nil {
			panic(err)
		}
	}
}
