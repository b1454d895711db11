// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package native

// Reader is read access to native state.
type Reader interface {
	Globals() (Globals, error)
	Balance(coldkey AccountID) (uint64, error)

	// Subnet returns ErrUnknownSubnet when [netuid] is not registered.
	Subnet(netuid NetUID) (*Subnet, error)
	// Subnets lists registered netuids in ascending order.
	Subnets() ([]NetUID, error)

	Stake(hotkey, coldkey AccountID, netuid NetUID) (uint64, error)
	// HotkeyPositions lists non-zero positions staked to [hotkey], ordered by
	// netuid then coldkey.
	HotkeyPositions(hotkey AccountID) ([]Position, error)
	// ColdkeyPositions lists non-zero positions owned by [coldkey], ordered
	// by hotkey then netuid.
	ColdkeyPositions(coldkey AccountID) ([]Position, error)

	HotkeyOwner(hotkey AccountID) (AccountID, bool, error)
	Proxies(coldkey AccountID) ([]AccountID, error)

	// Neuron returns ErrUnknownNeuron when [uid] is not registered.
	Neuron(netuid NetUID, uid uint16) (*Neuron, error)
}

// Writer mutates native state. Read-only views return ErrReadOnly.
type Writer interface {
	SetGlobals(Globals) error
	SetBalance(coldkey AccountID, amount uint64) error
	PutSubnet(netuid NetUID, subnet *Subnet) error
	// SetStake stores a position; zero removes it.
	SetStake(hotkey, coldkey AccountID, netuid NetUID, alpha uint64) error
	SetHotkeyOwner(hotkey, coldkey AccountID) error
	SetProxies(coldkey AccountID, proxies []AccountID) error
	PutNeuron(netuid NetUID, uid uint16, neuron *Neuron) error
}

// View is the per-call handle over native state.
type View interface {
	Reader
	Writer
}

// Tx is a mutable view whose writes become visible to other views only
// after Commit. Discard drops every buffered write.
type Tx interface {
	View
	Commit() error
	Discard()
}

// Store hands out views over native state.
type Store interface {
	ReadOnly() View
	Begin() Tx
}
