// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package staking implements both generations of the staking precompile.
// V1 funds stake from the call value and pays unstaked TAO back to the
// caller's EVM account; V2 works on the caller's native balance and adds
// stake moves between hotkeys and subnets.
package staking

import (
	"github.com/holiman/uint256"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

const (
	GasView  = contract.ReadGasCostPerSlot
	GasStake = 4 * contract.WriteGasCostPerSlot
	GasMove  = 8 * contract.WriteGasCostPerSlot
	GasProxy = contract.WriteGasCostPerSlot
)

var (
	ContractV1 = contract.MustNewTable(registry.Staking, append(
		[]*contract.Function{
			contract.NewFunction("addStake(bytes32,uint256)", nil, contract.Payable, GasStake, addStakeV1),
			contract.NewFunction("removeStake(bytes32,uint256,uint256)", nil, contract.NonPayable, GasStake, removeStakeV1),
		},
		shared()...,
	)...)

	ContractV2 = contract.MustNewTable(registry.StakingV2, append(
		[]*contract.Function{
			contract.NewFunction("addStake(bytes32,uint256,uint256)", nil, contract.Payable, GasStake, addStakeV2),
			contract.NewFunction("removeStake(bytes32,uint256,uint256)", nil, contract.NonPayable, GasStake, removeStakeV2),
			contract.NewFunction("moveStake(bytes32,bytes32,uint256,uint256,uint256)", nil, contract.NonPayable, GasMove, moveStake),
			contract.NewFunction("transferStake(bytes32,bytes32,uint256,uint256,uint256)", nil, contract.NonPayable, GasMove, transferStake),
			contract.NewFunction("getAlphaStakedValidators(bytes32,uint256)", []string{"uint256[]"}, contract.View, GasView, getAlphaStakedValidators),
			contract.NewFunction("getTotalAlphaStaked(bytes32,uint256)", []string{"uint256"}, contract.View, GasView, getTotalAlphaStaked),
		},
		shared()...,
	)...)
)

// shared returns the functions both generations share. Each table gets its
// own instances.
func shared() []*contract.Function {
	return []*contract.Function{
		contract.NewFunction("getTotalColdkeyStake(bytes32)", []string{"uint256"}, contract.View, GasView, getTotalColdkeyStake),
		contract.NewFunction("getTotalHotkeyStake(bytes32)", []string{"uint256"}, contract.View, GasView, getTotalHotkeyStake),
		contract.NewFunction("getStake(bytes32,bytes32,uint256)", []string{"uint256"}, contract.View, GasView, getStake),
		contract.NewFunction("addProxy(bytes32)", nil, contract.NonPayable, GasProxy, addProxy),
		contract.NewFunction("removeProxy(bytes32)", nil, contract.NonPayable, GasProxy, removeProxy),
	}
}

// addStakeV1 stakes the whole call value.
func addStakeV1(call *contract.CallContext, args abi.Values) ([]any, error) {
	netuid, err := contract.NetUIDArg(args, 1)
	if err != nil {
		return nil, err
	}
	rao, err := call.ValueRao()
	if err != nil {
		return nil, err
	}
	if err := native.Credit(call.Native, call.Coldkey, rao); err != nil {
		return nil, err
	}
	return stake(call, contract.AccountArg(args, 0), netuid, rao)
}

// addStakeV2 stakes [amount] rao from the native balance. Any call value is
// credited to the balance first.
func addStakeV2(call *contract.CallContext, args abi.Values) ([]any, error) {
	amount, err := contract.AmountArg(args, 1)
	if err != nil {
		return nil, err
	}
	netuid, err := contract.NetUIDArg(args, 2)
	if err != nil {
		return nil, err
	}
	rao, err := call.ValueRao()
	if err != nil {
		return nil, err
	}
	if err := native.Credit(call.Native, call.Coldkey, rao); err != nil {
		return nil, err
	}
	return stake(call, contract.AccountArg(args, 0), netuid, amount)
}

func stake(call *contract.CallContext, hotkey native.AccountID, netuid native.NetUID, rao uint64) ([]any, error) {
	alpha, err := native.AddStake(call.Native, call.Coldkey, hotkey, netuid, rao, call.BlockNumber)
	if err != nil {
		return nil, err
	}
	call.Log.Debug("stake added",
		"coldkey", call.Coldkey,
		"hotkey", hotkey,
		"netuid", netuid,
		"tao", rao,
		"alpha", alpha,
	)
	return nil, nil
}

// removeStakeV1 unstakes and pays the proceeds to the caller's EVM account.
func removeStakeV1(call *contract.CallContext, args abi.Values) ([]any, error) {
	tao, err := unstake(call, args)
	if err != nil {
		return nil, err
	}
	if err := native.Debit(call.Native, call.Coldkey, tao); err != nil {
		return nil, err
	}
	return nil, call.PayOut(tao)
}

// removeStakeV2 leaves the proceeds in the native balance.
func removeStakeV2(call *contract.CallContext, args abi.Values) ([]any, error) {
	_, err := unstake(call, args)
	return nil, err
}

func unstake(call *contract.CallContext, args abi.Values) (uint64, error) {
	alpha, err := contract.AmountArg(args, 1)
	if err != nil {
		return 0, err
	}
	netuid, err := contract.NetUIDArg(args, 2)
	if err != nil {
		return 0, err
	}
	hotkey := contract.AccountArg(args, 0)
	tao, err := native.RemoveStake(call.Native, call.Coldkey, hotkey, netuid, alpha, call.BlockNumber)
	if err != nil {
		return 0, err
	}
	call.Log.Debug("stake removed",
		"coldkey", call.Coldkey,
		"hotkey", hotkey,
		"netuid", netuid,
		"alpha", alpha,
		"tao", tao,
	)
	return tao, nil
}

func moveStake(call *contract.CallContext, args abi.Values) ([]any, error) {
	originNetuid, destinationNetuid, alpha, err := legArgs(args, 2)
	if err != nil {
		return nil, err
	}
	return nil, native.MoveStake(
		call.Native,
		call.Coldkey,
		contract.AccountArg(args, 0),
		contract.AccountArg(args, 1),
		originNetuid,
		destinationNetuid,
		alpha,
		call.BlockNumber,
	)
}

func transferStake(call *contract.CallContext, args abi.Values) ([]any, error) {
	originNetuid, destinationNetuid, alpha, err := legArgs(args, 2)
	if err != nil {
		return nil, err
	}
	return nil, native.TransferStake(
		call.Native,
		call.Coldkey,
		contract.AccountArg(args, 0),
		contract.AccountArg(args, 1),
		originNetuid,
		destinationNetuid,
		alpha,
		call.BlockNumber,
	)
}

// legArgs reads (originNetuid, destinationNetuid, amount) starting at [i].
func legArgs(args abi.Values, i int) (native.NetUID, native.NetUID, uint64, error) {
	origin, err := contract.NetUIDArg(args, i)
	if err != nil {
		return 0, 0, 0, err
	}
	destination, err := contract.NetUIDArg(args, i+1)
	if err != nil {
		return 0, 0, 0, err
	}
	amount, err := contract.AmountArg(args, i+2)
	if err != nil {
		return 0, 0, 0, err
	}
	return origin, destination, amount, nil
}

func getTotalColdkeyStake(call *contract.CallContext, args abi.Values) ([]any, error) {
	total, err := native.TotalColdkeyStake(call.Native, contract.AccountArg(args, 0))
	if err != nil {
		return nil, err
	}
	return []any{total}, nil
}

func getTotalHotkeyStake(call *contract.CallContext, args abi.Values) ([]any, error) {
	total, err := native.TotalHotkeyStake(call.Native, contract.AccountArg(args, 0))
	if err != nil {
		return nil, err
	}
	return []any{total}, nil
}

func getStake(call *contract.CallContext, args abi.Values) ([]any, error) {
	netuid, err := contract.NetUIDArg(args, 2)
	if err != nil {
		return nil, err
	}
	if _, err := call.Native.Subnet(netuid); err != nil {
		return nil, err
	}
	alpha, err := call.Native.Stake(contract.AccountArg(args, 0), contract.AccountArg(args, 1), netuid)
	if err != nil {
		return nil, err
	}
	return []any{uint256.NewInt(alpha)}, nil
}

// getAlphaStakedValidators lists the coldkeys staking to a hotkey on a
// subnet, each as a uint256.
func getAlphaStakedValidators(call *contract.CallContext, args abi.Values) ([]any, error) {
	netuid, err := contract.NetUIDArg(args, 1)
	if err != nil {
		return nil, err
	}
	if _, err := call.Native.Subnet(netuid); err != nil {
		return nil, err
	}
	stakers, err := native.AlphaStakers(call.Native, contract.AccountArg(args, 0), netuid)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(stakers))
	for i, coldkey := range stakers {
		out[i] = new(uint256.Int).SetBytes32(coldkey[:])
	}
	return []any{out}, nil
}

func getTotalAlphaStaked(call *contract.CallContext, args abi.Values) ([]any, error) {
	netuid, err := contract.NetUIDArg(args, 1)
	if err != nil {
		return nil, err
	}
	if _, err := call.Native.Subnet(netuid); err != nil {
		return nil, err
	}
	total, err := native.TotalHotkeyAlpha(call.Native, contract.AccountArg(args, 0), netuid)
	if err != nil {
		return nil, err
	}
	return []any{uint256.NewInt(total)}, nil
}

func addProxy(call *contract.CallContext, args abi.Values) ([]any, error) {
	return nil, native.AddProxy(call.Native, call.Coldkey, contract.AccountArg(args, 0))
}

func removeProxy(call *contract.CallContext, args abi.Values) ([]any, error) {
	return nil, native.RemoveProxy(call.Native, call.Coldkey, contract.AccountArg(args, 0))
}
