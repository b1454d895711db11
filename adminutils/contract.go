// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package adminutils implements the privileged entry point that toggles
// precompiles and manages the admins allowed to do so.
package adminutils

import (
	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/registry"
)

const (
	GasView = contract.ReadGasCostPerSlot
	GasSet  = contract.WriteGasCostPerSlot
	// GasEvent covers the log emitted by every successful setter.
	GasEvent = 1_500
)

var (
	PrecompileEnabledEvent = common.BytesToHash(crypto.Keccak256([]byte("PrecompileEnabled(uint8,bool)")))
	AdminChangedEvent      = common.BytesToHash(crypto.Keccak256([]byte("AdminChanged(address,bool)")))

	boolType = []abi.Type{abi.MustParseType("bool")}
)

var Contract = contract.MustNewTable(registry.AdminUtils,
	contract.NewFunction("setPrecompileEnabled(uint8,bool)", nil, contract.NonPayable, GasSet+GasEvent, setPrecompileEnabled),
	// the name the chain's runtime call used before the EVM entry point existed
	contract.NewFunction("sudoToggleEvmPrecompile(uint8,bool)", nil, contract.NonPayable, GasSet+GasEvent, setPrecompileEnabled),
	contract.NewFunction("isPrecompileEnabled(uint8)", []string{"bool"}, contract.View, GasView, isPrecompileEnabled),
	contract.NewFunction("setAdmin(address,bool)", nil, contract.NonPayable, GasSet+GasEvent, setAdmin),
	contract.NewFunction("isAdmin(address)", []string{"bool"}, contract.View, GasView, isAdmin),
)

func setPrecompileEnabled(call *contract.CallContext, args abi.Values) ([]any, error) {
	id, err := registry.FromOrdinal(args.Uint8(0))
	if err != nil {
		return nil, err
	}
	enabled := args.Bool(1)
	if err := call.Enablement.SetEnabled(call.State, id, enabled, call.Caller); err != nil {
		return nil, err
	}
	if err := emit(call, PrecompileEnabledEvent, common.Hash{common.HashLength - 1: byte(id)}, enabled); err != nil {
		return nil, err
	}
	call.Log.Info("precompile enablement changed",
		"precompile", id,
		"enabled", enabled,
		"by", call.Caller,
	)
	return nil, nil
}

func isPrecompileEnabled(call *contract.CallContext, args abi.Values) ([]any, error) {
	id, err := registry.FromOrdinal(args.Uint8(0))
	if err != nil {
		return nil, err
	}
	return []any{call.Enablement.IsEnabled(call.State, id)}, nil
}

func setAdmin(call *contract.CallContext, args abi.Values) ([]any, error) {
	addr, admin := args.Address(0), args.Bool(1)
	if err := call.Enablement.SetAdmin(call.State, addr, admin, call.Caller); err != nil {
		return nil, err
	}
	if err := emit(call, AdminChangedEvent, common.BytesToHash(addr.Bytes()), admin); err != nil {
		return nil, err
	}
	call.Log.Info("enablement admin changed",
		"account", addr,
		"admin", admin,
		"by", call.Caller,
	)
	return nil, nil
}

func isAdmin(call *contract.CallContext, args abi.Values) ([]any, error) {
	return []any{call.Enablement.IsAdmin(call.State, args.Address(0))}, nil
}

// emit logs [event] with one indexed subject and a bool payload.
func emit(call *contract.CallContext, event, subject common.Hash, value bool) error {
	data, err := abi.Encode(boolType, []any{value})
	if err != nil {
		return err
	}
	call.Emit([]common.Hash{event, subject}, data)
	return nil
}
