// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metagraph implements read access to the neurons registered on a
// subnet.
package metagraph

import (
	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

const GasView = contract.ReadGasCostPerSlot

var Contract = contract.MustNewTable(registry.Metagraph,
	contract.NewFunction("getUidCount(uint16)", []string{"uint16"}, contract.View, GasView, getUidCount),
	contract.NewFunction("getStake(uint16,uint16)", []string{"uint64"}, contract.View, GasView, getStake),
	contract.NewFunction("getHotkey(uint16,uint16)", []string{"bytes32"}, contract.View, GasView, getHotkey),
	contract.NewFunction("getColdkey(uint16,uint16)", []string{"bytes32"}, contract.View, GasView, getColdkey),
)

func getUidCount(call *contract.CallContext, args abi.Values) ([]any, error) {
	subnet, err := call.Native.Subnet(native.NetUID(args.Uint16(0)))
	if err != nil {
		return nil, err
	}
	return []any{subnet.NeuronCount}, nil
}

// neuron resolves the (netuid, uid) pair carried in the first two arguments.
func neuron(call *contract.CallContext, args abi.Values) (native.NetUID, *native.Neuron, error) {
	netuid := native.NetUID(args.Uint16(0))
	if _, err := call.Native.Subnet(netuid); err != nil {
		return 0, nil, err
	}
	n, err := call.Native.Neuron(netuid, args.Uint16(1))
	if err != nil {
		return 0, nil, err
	}
	return netuid, n, nil
}

// getStake sums the alpha staked to the neuron's hotkey on its subnet.
func getStake(call *contract.CallContext, args abi.Values) ([]any, error) {
	netuid, n, err := neuron(call, args)
	if err != nil {
		return nil, err
	}
	total, err := native.TotalHotkeyAlpha(call.Native, n.Hotkey, netuid)
	if err != nil {
		return nil, err
	}
	return []any{total}, nil
}

func getHotkey(call *contract.CallContext, args abi.Values) ([]any, error) {
	_, n, err := neuron(call, args)
	if err != nil {
		return nil, err
	}
	return []any{[32]byte(n.Hotkey)}, nil
}

func getColdkey(call *contract.CallContext, args abi.Values) ([]any, error) {
	_, n, err := neuron(call, args)
	if err != nil {
		return nil, err
	}
	return []any{[32]byte(n.Coldkey)}, nil
}
