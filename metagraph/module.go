// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metagraph

import (
	"github.com/luxfi/subnetprecompile/enablement"
	"github.com/luxfi/subnetprecompile/modules"
	"github.com/luxfi/subnetprecompile/registry"
)

// ConfigKey is the key used in json config files to specify this precompile config.
const ConfigKey = "metagraphConfig"

var Module = modules.Module{
	ConfigKey:    ConfigKey,
	Address:      registry.Metagraph.Address(),
	Identity:     registry.Metagraph,
	Contract:     Contract,
	Configurator: &enablement.Configurator{Key: ConfigKey, Identity: registry.Metagraph},
}

func init() {
	if err := modules.RegisterModule(Module); err != nil {
		panic(err)
	}
}
