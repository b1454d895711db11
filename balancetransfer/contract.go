// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package balancetransfer moves EVM value into native coldkey balances.
package balancetransfer

import (
	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

const GasTransfer = contract.WriteGasCostPerSlot

var Contract = contract.MustNewTable(registry.BalanceTransfer,
	contract.NewFunction("transfer(bytes32)", nil, contract.Payable, GasTransfer, transfer),
)

// transfer credits the call value, in rao, to the destination coldkey. The
// wei stays with the precompile account and sub-rao remainders are not
// refunded.
func transfer(call *contract.CallContext, args abi.Values) ([]any, error) {
	rao, err := call.ValueRao()
	if err != nil {
		return nil, err
	}
	if rao == 0 {
		return nil, nil
	}
	destination := contract.AccountArg(args, 0)
	if err := native.Credit(call.Native, destination, rao); err != nil {
		return nil, err
	}
	call.Log.Debug("balance transfer",
		"from", call.Caller,
		"to", destination,
		"rao", rao,
	)
	return nil, nil
}
