// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"bytes"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/registry"
)

type Module struct {
	// ConfigKey is the key used in json config files to specify this precompile config.
	ConfigKey string
	// Address returns the address where the stateful precompile is accessible.
	Address common.Address
	// Identity is the address-independent name of the precompile.
	Identity registry.Identity
	// Contract is the selector table the router dispatches into.
	Contract *contract.Table
	// Configurator is used to configure the stateful precompile when the config is enabled.
	contract.Configurator
}

type moduleArray []Module

func (u moduleArray) Len() int {
	return len(u)
}

func (u moduleArray) Swap(i, j int) {
	u[i], u[j] = u[j], u[i]
}

func (u moduleArray) Less(i, j int) bool {
	return bytes.Compare(u[i].Address.Bytes(), u[j].Address.Bytes()) < 0
}
