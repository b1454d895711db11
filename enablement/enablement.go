// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package enablement stores which subnet precompiles are administratively
// enabled, and who may change that, in the EVM state of the AdminUtils
// account.
package enablement

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/registry"
)

var (
	ErrUnauthorized    = errors.New("caller is not an enablement admin")
	ErrNotToggleable   = errors.New("precompile is always on")
	ErrUnknownIdentity = registry.ErrUnknownIdentity
)

// StorageAddress is the account whose storage holds flags and roles.
var StorageAddress = registry.AdminUtils.Address()

// Flag slot value layout.
const (
	markerByte = 0
	valueByte  = common.HashLength - 1
)

var flagDomain = []byte("subnetprecompile.enablement.flag")

func flagSlot(id registry.Identity) common.Hash {
	encoded, _ := id.MarshalBinary()
	return common.BytesToHash(crypto.Keccak256(flagDomain, encoded))
}

func flagValue(enabled bool) common.Hash {
	var v common.Hash
	v[markerByte] = 1
	if enabled {
		v[valueByte] = 1
	}
	return v
}

var _ contract.Enablement = (*Registry)(nil)

// Registry reads and writes enablement flags. It keeps no state of its own:
// every query goes to the StateDB it is given.
type Registry struct {
	authority Authority
}

func New(authority Authority) *Registry {
	return &Registry{authority: authority}
}

// Default uses the allow list stored next to the flags.
var Default = New(AllowListAuthority{})

// IsEnabled reports whether [id] accepts calls. Always-on identities are
// enabled regardless of storage; unset flags read as disabled.
func (r *Registry) IsEnabled(state contract.StateReader, id registry.Identity) bool {
	if !id.Valid() {
		return false
	}
	if id.AlwaysOn() {
		return true
	}
	v := state.GetState(StorageAddress, flagSlot(id))
	return v[markerByte] != 0 && v[valueByte] != 0
}

// SetEnabled changes the flag of [id] on behalf of [caller]. Nothing is
// written unless every check passes.
func (r *Registry) SetEnabled(state contract.StateDB, id registry.Identity, enabled bool, caller common.Address) error {
	if r.authority == nil || !r.authority.IsAdmin(state, caller) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	return Initialize(state, id, enabled)
}

// IsAdmin reports whether [addr] may toggle precompiles.
func (r *Registry) IsAdmin(state contract.StateReader, addr common.Address) bool {
	return r.authority != nil && r.authority.IsAdmin(state, addr)
}

// SetAdmin grants or revokes the admin role of [addr] on behalf of [caller].
func (r *Registry) SetAdmin(state contract.StateDB, addr common.Address, admin bool, caller common.Address) error {
	if !r.IsAdmin(state, caller) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller)
	}
	role := NoRole
	if admin {
		role = AdminRole
	}
	SetRole(state, addr, role)
	return nil
}

// Initialize writes the flag of [id] without an authorization check. It is
// used by genesis and upgrade configuration.
func Initialize(state contract.StateDB, id registry.Identity, enabled bool) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownIdentity, uint8(id))
	}
	if id.AlwaysOn() {
		return fmt.Errorf("%w: %s", ErrNotToggleable, id)
	}
	state.SetState(StorageAddress, flagSlot(id), flagValue(enabled))
	return nil
}
