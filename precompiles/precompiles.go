// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package precompiles registers every subnet precompile module. Import it for
// its side effects before building a router from modules.RegisteredModules.
package precompiles

import (
	_ "github.com/luxfi/subnetprecompile/adminutils"
	_ "github.com/luxfi/subnetprecompile/alpha"
	_ "github.com/luxfi/subnetprecompile/balancetransfer"
	_ "github.com/luxfi/subnetprecompile/metagraph"
	_ "github.com/luxfi/subnetprecompile/neuron"
	_ "github.com/luxfi/subnetprecompile/staking"
	_ "github.com/luxfi/subnetprecompile/subnet"
)
