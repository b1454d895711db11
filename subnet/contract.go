// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package subnet implements the subnet precompile: network registration and
// the owner-adjustable hyperparameters of each subnet.
package subnet

import (
	"fmt"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

const (
	GasView     = contract.ReadGasCostPerSlot
	GasSet      = contract.WriteGasCostPerSlot
	GasRegister = 10 * contract.WriteGasCostPerSlot
)

// Hyperparameter accessors. Every entry yields a get<Name>(uint16) view and
// an owner-only set<Name>(uint16,T).
var params = [][]*contract.Function{
	hyperparam("ServingRateLimit", func(p *native.Hyperparams) *uint64 { return &p.ServingRateLimit }),
	hyperparam("MinDifficulty", func(p *native.Hyperparams) *uint64 { return &p.MinDifficulty }),
	hyperparam("MaxDifficulty", func(p *native.Hyperparams) *uint64 { return &p.MaxDifficulty }),
	hyperparam("WeightsVersionKey", func(p *native.Hyperparams) *uint64 { return &p.WeightsVersionKey }),
	hyperparam("WeightsSetRateLimit", func(p *native.Hyperparams) *uint64 { return &p.WeightsSetRateLimit }),
	hyperparam("AdjustmentAlpha", func(p *native.Hyperparams) *uint64 { return &p.AdjustmentAlpha }),
	hyperparam("MaxWeightLimit", func(p *native.Hyperparams) *uint16 { return &p.MaxWeightLimit }),
	hyperparam("ImmunityPeriod", func(p *native.Hyperparams) *uint16 { return &p.ImmunityPeriod }),
	hyperparam("MinAllowedWeights", func(p *native.Hyperparams) *uint16 { return &p.MinAllowedWeights }),
	hyperparam("Kappa", func(p *native.Hyperparams) *uint16 { return &p.Kappa }),
	hyperparam("Rho", func(p *native.Hyperparams) *uint16 { return &p.Rho }),
	hyperparam("ActivityCutoff", func(p *native.Hyperparams) *uint16 { return &p.ActivityCutoff }),
	hyperparam("NetworkRegistrationAllowed", func(p *native.Hyperparams) *bool { return &p.NetworkRegistrationAllowed }),
	hyperparam("NetworkPowRegistrationAllowed", func(p *native.Hyperparams) *bool { return &p.NetworkPowRegistrationAllowed }),
	hyperparam("MinBurn", func(p *native.Hyperparams) *uint64 { return &p.MinBurn }),
	hyperparam("MaxBurn", func(p *native.Hyperparams) *uint64 { return &p.MaxBurn }),
	hyperparam("Difficulty", func(p *native.Hyperparams) *uint64 { return &p.Difficulty }),
	hyperparam("BondsMovingAverage", func(p *native.Hyperparams) *uint64 { return &p.BondsMovingAverage }),
	hyperparam("CommitRevealWeightsEnabled", func(p *native.Hyperparams) *bool { return &p.CommitRevealWeightsEnabled }),
	hyperparam("LiquidAlphaEnabled", func(p *native.Hyperparams) *bool { return &p.LiquidAlphaEnabled }),
	hyperparam("CommitRevealWeightsInterval", func(p *native.Hyperparams) *uint64 { return &p.CommitRevealWeightsInterval }),
	hyperparam("MaxAllowedUids", func(p *native.Hyperparams) *uint16 { return &p.MaxAllowedUids }),
}

var Contract = contract.MustNewTable(registry.Subnet, functions()...)

func functions() []*contract.Function {
	fns := []*contract.Function{
		contract.NewFunction("registerNetwork(bytes32)", nil, contract.Payable, GasRegister, registerNetwork),
		contract.NewFunction("getNumberOfSubnets()", []string{"uint16"}, contract.View, GasView, getNumberOfSubnets),
		contract.NewFunction("getAlphaValues(uint16)", []string{"uint16", "uint16"}, contract.View, GasView, getAlphaValues),
		contract.NewFunction("setAlphaValues(uint16,uint16,uint16)", nil, contract.NonPayable, GasSet, setAlphaValues),
	}
	for _, pair := range params {
		fns = append(fns, pair...)
	}
	return fns
}

// hyperparam builds the getter and setter of one field. [T] is the ABI type
// of the value as well as its Go type.
func hyperparam[T uint16 | uint64 | bool](name string, field func(*native.Hyperparams) *T) []*contract.Function {
	abiType := abiTypeOf[T]()
	get := contract.NewFunction(
		fmt.Sprintf("get%s(uint16)", name),
		[]string{abiType},
		contract.View,
		GasView,
		func(call *contract.CallContext, args abi.Values) ([]any, error) {
			subnet, err := call.Native.Subnet(native.NetUID(args.Uint16(0)))
			if err != nil {
				return nil, err
			}
			return []any{*field(&subnet.Params)}, nil
		},
	)
	set := contract.NewFunction(
		fmt.Sprintf("set%s(uint16,%s)", name, abiType),
		nil,
		contract.NonPayable,
		GasSet,
		func(call *contract.CallContext, args abi.Values) ([]any, error) {
			netuid := native.NetUID(args.Uint16(0))
			value := args[1].(T)
			err := native.UpdateHyperparams(call.Native, call.Coldkey, netuid, func(p *native.Hyperparams) error {
				*field(p) = value
				return nil
			})
			if err != nil {
				return nil, err
			}
			call.Log.Debug("hyperparameter updated",
				"netuid", netuid,
				"name", name,
				"value", value,
			)
			return nil, nil
		},
	)
	return []*contract.Function{get, set}
}

func abiTypeOf[T uint16 | uint64 | bool]() string {
	var zero T
	switch any(zero).(type) {
	case uint16:
		return "uint16"
	case uint64:
		return "uint64"
	default:
		return "bool"
	}
}

// registerNetwork credits the call value to the caller's coldkey and locks
// the network cost from it.
func registerNetwork(call *contract.CallContext, args abi.Values) ([]any, error) {
	rao, err := call.ValueRao()
	if err != nil {
		return nil, err
	}
	if err := native.Credit(call.Native, call.Coldkey, rao); err != nil {
		return nil, err
	}
	hotkey := contract.AccountArg(args, 0)
	netuid, err := native.RegisterNetwork(call.Native, call.Coldkey, hotkey, call.BlockNumber)
	if err != nil {
		return nil, err
	}
	call.Log.Info("network registered",
		"netuid", netuid,
		"owner", call.Coldkey,
		"hotkey", hotkey,
	)
	return nil, nil
}

// getNumberOfSubnets counts registered subnets, the root network included.
func getNumberOfSubnets(call *contract.CallContext, _ abi.Values) ([]any, error) {
	netuids, err := call.Native.Subnets()
	if err != nil {
		return nil, err
	}
	return []any{uint16(len(netuids))}, nil
}

func getAlphaValues(call *contract.CallContext, args abi.Values) ([]any, error) {
	subnet, err := call.Native.Subnet(native.NetUID(args.Uint16(0)))
	if err != nil {
		return nil, err
	}
	return []any{subnet.Params.AlphaLow, subnet.Params.AlphaHigh}, nil
}

// setAlphaValues requires liquid alpha to be enabled and low <= high.
func setAlphaValues(call *contract.CallContext, args abi.Values) ([]any, error) {
	netuid := native.NetUID(args.Uint16(0))
	low, high := args.Uint16(1), args.Uint16(2)
	return nil, native.UpdateHyperparams(call.Native, call.Coldkey, netuid, func(p *native.Hyperparams) error {
		if !p.LiquidAlphaEnabled {
			return fmt.Errorf("%w: liquid alpha disabled on netuid %d", native.ErrInvalidValue, netuid)
		}
		if low > high {
			return fmt.Errorf("%w: alpha low %d above high %d", native.ErrInvalidValue, low, high)
		}
		p.AlphaLow, p.AlphaHigh = low, high
		return nil
	})
}
