// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the interface between the precompile router and
// the handlers it dispatches to.
package contract

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/subnetprecompile/precompileconfig"
)

// StateReader provides read access to EVM state
type StateReader interface {
	GetState(common.Address, common.Hash) common.Hash
}

// StateDB is the subset of the EVM state available to precompiles
type StateDB interface {
	StateReader
	SetState(common.Address, common.Hash, common.Hash) common.Hash

	GetBalance(common.Address) *uint256.Int
	AddBalance(common.Address, *uint256.Int, tracing.BalanceChangeReason) uint256.Int
	SubBalance(common.Address, *uint256.Int, tracing.BalanceChangeReason) uint256.Int

	CreateAccount(common.Address)
	Exist(common.Address) bool

	AddLog(*ethtypes.Log)

	Snapshot() int
	RevertToSnapshot(int)
}

// BlockContext is the block a call executes in.
type BlockContext interface {
	Number() *big.Int
	Timestamp() uint64
}

// AccessibleState defines the interface exposed to the precompile router by
// the EVM.
type AccessibleState interface {
	GetStateDB() StateDB
	GetBlockContext() BlockContext
}

// Configurator applies a precompile's genesis or upgrade configuration to the
// EVM state.
type Configurator interface {
	MakeConfig() precompileconfig.Config
	Configure(cfg precompileconfig.Config, state StateDB, blockContext BlockContext) error
}
