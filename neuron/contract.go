// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package neuron implements neuron registration by burn.
package neuron

import (
	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

const GasRegister = 4 * contract.WriteGasCostPerSlot

var Contract = contract.MustNewTable(registry.Neuron,
	contract.NewFunction("burnedRegister(uint16,bytes32)", nil, contract.Payable, GasRegister, burnedRegister),
)

// burnedRegister credits the call value to the caller's coldkey, then burns
// the subnet's registration cost from it.
func burnedRegister(call *contract.CallContext, args abi.Values) ([]any, error) {
	rao, err := call.ValueRao()
	if err != nil {
		return nil, err
	}
	if err := native.Credit(call.Native, call.Coldkey, rao); err != nil {
		return nil, err
	}
	netuid := native.NetUID(args.Uint16(0))
	hotkey := contract.AccountArg(args, 1)
	uid, err := native.BurnedRegister(call.Native, call.Coldkey, netuid, hotkey, call.BlockNumber)
	if err != nil {
		return nil, err
	}
	call.Log.Debug("neuron registered",
		"netuid", netuid,
		"uid", uid,
		"hotkey", hotkey,
	)
	return nil, nil
}
