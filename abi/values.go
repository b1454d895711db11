// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Values is a decoded argument list. The accessors panic when the value at
// [i] has a different Go type, which only happens when a handler reads an
// argument list it did not declare.
type Values []any

func (v Values) Uint8(i int) uint8   { return v[i].(uint8) }
func (v Values) Uint16(i int) uint16 { return v[i].(uint16) }
func (v Values) Uint32(i int) uint32 { return v[i].(uint32) }
func (v Values) Uint64(i int) uint64 { return v[i].(uint64) }

// Uint256 returns a uint128/uint256 argument.
func (v Values) Uint256(i int) *uint256.Int { return v[i].(*uint256.Int) }

func (v Values) Bool(i int) bool              { return v[i].(bool) }
func (v Values) Address(i int) common.Address { return v[i].(common.Address) }
func (v Values) Bytes32(i int) [32]byte       { return v[i].([32]byte) }
func (v Values) Bytes(i int) []byte           { return v[i].([]byte) }
func (v Values) String(i int) string          { return v[i].(string) }
func (v Values) Slice(i int) []any            { return v[i].([]any) }
func (v Values) Tuple(i int) Values           { return Values(v[i].([]any)) }
