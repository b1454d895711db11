// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package enablement

import (
	"github.com/luxfi/geth/common"

	"github.com/luxfi/subnetprecompile/contract"
)

// Authority decides who may toggle precompiles.
type Authority interface {
	IsAdmin(state contract.StateReader, addr common.Address) bool
}

// Role is the allow list role of an address, stored as the low byte of the
// address's slot.
type Role uint8

const (
	NoRole    Role = 0
	AdminRole Role = 1
)

func (r Role) IsAdmin() bool {
	return r == AdminRole
}

func (r Role) String() string {
	switch r {
	case NoRole:
		return "none"
	case AdminRole:
		return "admin"
	default:
		return "unknown"
	}
}

// AllowListAuthority keeps roles in the AdminUtils storage, one slot per
// address keyed by the left-padded address.
type AllowListAuthority struct{}

func (AllowListAuthority) IsAdmin(state contract.StateReader, addr common.Address) bool {
	return GetRole(state, addr).IsAdmin()
}

func GetRole(state contract.StateReader, addr common.Address) Role {
	v := state.GetState(StorageAddress, common.BytesToHash(addr[:]))
	return Role(v[common.HashLength-1])
}

func SetRole(state contract.StateDB, addr common.Address, role Role) {
	var v common.Hash
	v[common.HashLength-1] = byte(role)
	state.SetState(StorageAddress, common.BytesToHash(addr[:]), v)
}
