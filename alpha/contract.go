// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package alpha implements the read-only precompile over subnet AMM pools:
// prices, reserves and swap projections.
package alpha

import (
	"github.com/holiman/uint256"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/amm"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

const GasView = contract.ReadGasCostPerSlot

// Contract is the selector table of the alpha precompile. Every function is a
// view.
var Contract = contract.MustNewTable(registry.Alpha,
	poolView("getAlphaPrice(uint16)", "uint256", func(p *amm.Pool) any { return uint256.NewInt(p.Price()) }),
	poolView("getMovingAlphaPrice(uint16)", "uint256", func(p *amm.Pool) any { return uint256.NewInt(p.MovingAlphaPrice()) }),
	poolView("getTaoInPool(uint16)", "uint64", func(p *amm.Pool) any { return p.TaoIn }),
	poolView("getAlphaInPool(uint16)", "uint64", func(p *amm.Pool) any { return p.AlphaIn }),
	poolView("getAlphaOutPool(uint16)", "uint64", func(p *amm.Pool) any { return p.AlphaOut }),
	poolView("getAlphaIssuance(uint16)", "uint64", func(p *amm.Pool) any { return p.Issuance() }),
	poolView("getSubnetMechanism(uint16)", "uint16", func(p *amm.Pool) any { return uint16(p.Mechanism) }),
	poolView("getSubnetVolume(uint16)", "uint256", func(p *amm.Pool) any { return uint256.NewInt(p.Volume) }),
	contract.NewFunction("simSwapTaoForAlpha(uint16,uint64)", []string{"uint256"}, contract.View, GasView, simSwapTaoForAlpha),
	contract.NewFunction("simSwapAlphaForTao(uint16,uint64)", []string{"uint256"}, contract.View, GasView, simSwapAlphaForTao),
	contract.NewFunction("getEMAPriceHalvingBlocks(uint16)", []string{"uint64"}, contract.View, GasView, getEMAPriceHalvingBlocks),
	contract.NewFunction("getTaoWeight()", []string{"uint256"}, contract.View, GasView, getTaoWeight),
	contract.NewFunction("getMinimumPoolLiquidity()", []string{"uint256"}, contract.View, GasView, getMinimumPoolLiquidity),
	contract.NewFunction("getRootNetuid()", []string{"uint16"}, contract.View, GasView, getRootNetuid),
)

// poolView builds a getter over the pool of the subnet named by the first
// argument.
func poolView(signature, output string, read func(*amm.Pool) any) *contract.Function {
	return contract.NewFunction(signature, []string{output}, contract.View, GasView,
		func(call *contract.CallContext, args abi.Values) ([]any, error) {
			subnet, err := call.Native.Subnet(native.NetUID(args.Uint16(0)))
			if err != nil {
				return nil, err
			}
			return []any{read(&subnet.Pool)}, nil
		},
	)
}

func simSwapTaoForAlpha(call *contract.CallContext, args abi.Values) ([]any, error) {
	subnet, err := call.Native.Subnet(native.NetUID(args.Uint16(0)))
	if err != nil {
		return nil, err
	}
	return []any{uint256.NewInt(subnet.Pool.SimSwapTaoForAlpha(args.Uint64(1)))}, nil
}

func simSwapAlphaForTao(call *contract.CallContext, args abi.Values) ([]any, error) {
	subnet, err := call.Native.Subnet(native.NetUID(args.Uint16(0)))
	if err != nil {
		return nil, err
	}
	return []any{uint256.NewInt(subnet.Pool.SimSwapAlphaForTao(args.Uint64(1)))}, nil
}

func getEMAPriceHalvingBlocks(call *contract.CallContext, args abi.Values) ([]any, error) {
	subnet, err := call.Native.Subnet(native.NetUID(args.Uint16(0)))
	if err != nil {
		return nil, err
	}
	return []any{subnet.Params.EMAPriceHalvingBlocks}, nil
}

// getTaoWeight reports the integer part of the TAO weight.
func getTaoWeight(call *contract.CallContext, _ abi.Values) ([]any, error) {
	globals, err := call.Native.Globals()
	if err != nil {
		return nil, err
	}
	return []any{uint256.NewInt(globals.TaoWeight / amm.PriceScale)}, nil
}

func getMinimumPoolLiquidity(*contract.CallContext, abi.Values) ([]any, error) {
	return []any{uint256.NewInt(amm.MinimumPoolLiquidity)}, nil
}

func getRootNetuid(*contract.CallContext, abi.Values) ([]any, error) {
	return []any{uint16(native.RootNetUID)}, nil
}
