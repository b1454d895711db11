// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
)

// errorSelector is the selector of solidity's Error(string).
var errorSelector = contract.CalculateFunctionSelector("Error(string)")

// RevertData returns the Error(string) revert payload describing [err].
func RevertData(err error) []byte {
	if err == nil {
		return nil
	}
	data := append([]byte(nil), errorSelector[:]...)
	body, encErr := abi.Encode([]abi.Type{abi.String}, []any{err.Error()})
	if encErr != nil {
		return data
	}
	return append(data, body...)
}
