// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"
	"github.com/luxfi/log"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

// CallContext is everything a handler may touch during one call.
type CallContext struct {
	Identity registry.Identity
	// Address is the precompile being called. Payable functions find the
	// call value already credited to it.
	Address common.Address
	Caller  common.Address
	// Coldkey is the native account of [Caller].
	Coldkey     native.AccountID
	Value       *uint256.Int
	BlockNumber uint64
	State       StateDB
	// Native is read-only for view functions.
	Native     native.View
	Enablement Enablement
	Log        log.Logger
}

// Enablement is the administrative switch the router consults before every
// call.
type Enablement interface {
	IsEnabled(state StateReader, id registry.Identity) bool
	SetEnabled(state StateDB, id registry.Identity, enabled bool, caller common.Address) error
	IsAdmin(state StateReader, addr common.Address) bool
	SetAdmin(state StateDB, addr common.Address, admin bool, caller common.Address) error
}

var weiPerRao = uint256.NewInt(native.WeiPerRao)

// ValueRao converts the call value to rao, dropping sub-rao wei.
func (c *CallContext) ValueRao() (uint64, error) {
	if c.Value == nil {
		return 0, nil
	}
	rao := new(uint256.Int).Div(c.Value, weiPerRao)
	if !rao.IsUint64() {
		return 0, fmt.Errorf("%w: value %s exceeds the native supply range", native.ErrInvalidValue, c.Value)
	}
	return rao.Uint64(), nil
}

// PayOut sends [rao] from the precompile's EVM balance to the caller.
func (c *CallContext) PayOut(rao uint64) error {
	if rao == 0 {
		return nil
	}
	wei := new(uint256.Int).Mul(uint256.NewInt(rao), weiPerRao)
	if c.State.GetBalance(c.Address).Lt(wei) {
		return fmt.Errorf("%w: precompile holds %s wei, owes %s", native.ErrInsufficientBalance, c.State.GetBalance(c.Address), wei)
	}
	c.State.SubBalance(c.Address, wei, tracing.BalanceChangeTransfer)
	c.State.AddBalance(c.Caller, wei, tracing.BalanceChangeTransfer)
	return nil
}

// Emit appends a log from the precompile.
func (c *CallContext) Emit(topics []common.Hash, data []byte) {
	c.State.AddLog(&ethtypes.Log{
		Address:     c.Address,
		Topics:      topics,
		Data:        data,
		BlockNumber: c.BlockNumber,
	})
}

// Argument conversions shared by the handlers. They fail with
// ErrArgumentDecode so the router reports them as malformed input.

// NetUIDArg reads a uint16 or uint256 subnet id.
func NetUIDArg(args abi.Values, i int) (native.NetUID, error) {
	switch v := args[i].(type) {
	case uint16:
		return native.NetUID(v), nil
	case *uint256.Int:
		if !v.IsUint64() || v.Uint64() > 0xffff {
			return 0, fmt.Errorf("%w: netuid %s out of range", ErrArgumentDecode, v)
		}
		return native.NetUID(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("%w: netuid argument of type %T", ErrArgumentDecode, v)
	}
}

// AmountArg reads a uint256 amount that must fit the native uint64 range.
func AmountArg(args abi.Values, i int) (uint64, error) {
	v := args.Uint256(i)
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: amount %s out of range", ErrArgumentDecode, v)
	}
	return v.Uint64(), nil
}

// AccountArg reads a bytes32 native account.
func AccountArg(args abi.Values, i int) native.AccountID {
	return native.AccountID(args.Bytes32(i))
}
