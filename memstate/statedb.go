// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package memstate is an in-memory EVM state with snapshot support, used to
// run precompile calls outside a full node.
package memstate

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"

	"github.com/luxfi/subnetprecompile/contract"
)

var (
	_ contract.StateDB         = (*StateDB)(nil)
	_ contract.AccessibleState = (*Env)(nil)
	_ contract.BlockContext    = Block{}
)

// StateDB records an undo entry for every mutation so snapshots can be
// reverted in reverse order.
type StateDB struct {
	storage  map[common.Address]map[common.Hash]common.Hash
	balances map[common.Address]*uint256.Int
	accounts map[common.Address]bool
	logs     []*ethtypes.Log

	journal   []func()
	revisions []int
}

func New() *StateDB {
	return &StateDB{
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		balances: make(map[common.Address]*uint256.Int),
		accounts: make(map[common.Address]bool),
	}
}

func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	return s.storage[addr][key]
}

func (s *StateDB) SetState(addr common.Address, key, value common.Hash) common.Hash {
	slots, ok := s.storage[addr]
	if !ok {
		slots = make(map[common.Hash]common.Hash)
		s.storage[addr] = slots
	}
	prev, existed := slots[key]
	slots[key] = value
	s.journal = append(s.journal, func() {
		if existed {
			slots[key] = prev
		} else {
			delete(slots, key)
		}
	})
	return prev
}

func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	if bal, ok := s.balances[addr]; ok {
		return bal.Clone()
	}
	return new(uint256.Int)
}

func (s *StateDB) AddBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	prev := s.GetBalance(addr)
	s.setBalance(addr, new(uint256.Int).Add(prev, amount))
	return *prev
}

// SubBalance wraps below zero like the EVM state it stands in for; callers
// check balances first.
func (s *StateDB) SubBalance(addr common.Address, amount *uint256.Int, _ tracing.BalanceChangeReason) uint256.Int {
	prev := s.GetBalance(addr)
	s.setBalance(addr, new(uint256.Int).Sub(prev, amount))
	return *prev
}

func (s *StateDB) setBalance(addr common.Address, amount *uint256.Int) {
	prev, existed := s.balances[addr]
	s.balances[addr] = amount
	s.touch(addr)
	s.journal = append(s.journal, func() {
		if existed {
			s.balances[addr] = prev
		} else {
			delete(s.balances, addr)
		}
	})
}

func (s *StateDB) CreateAccount(addr common.Address) {
	s.touch(addr)
}

func (s *StateDB) touch(addr common.Address) {
	if s.accounts[addr] {
		return
	}
	s.accounts[addr] = true
	s.journal = append(s.journal, func() { delete(s.accounts, addr) })
}

func (s *StateDB) Exist(addr common.Address) bool {
	return s.accounts[addr]
}

func (s *StateDB) AddLog(log *ethtypes.Log) {
	s.logs = append(s.logs, log)
	s.journal = append(s.journal, func() { s.logs = s.logs[:len(s.logs)-1] })
}

func (s *StateDB) Logs() []*ethtypes.Log {
	return s.logs
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	s.revisions = append(s.revisions, len(s.journal))
	return len(s.revisions) - 1
}

// RevertToSnapshot undoes every change made after [id] was taken. Unknown
// identifiers are ignored.
func (s *StateDB) RevertToSnapshot(id int) {
	if id < 0 || id >= len(s.revisions) {
		return
	}
	mark := s.revisions[id]
	for i := len(s.journal) - 1; i >= mark; i-- {
		s.journal[i]()
	}
	s.journal = s.journal[:mark]
	s.revisions = s.revisions[:id]
}

// Block is a fixed block context.
type Block struct {
	Height uint64
	Time   uint64
}

func (b Block) Number() *big.Int {
	return new(big.Int).SetUint64(b.Height)
}

func (b Block) Timestamp() uint64 {
	return b.Time
}

// Env pairs a state with the block it executes in.
type Env struct {
	State *StateDB
	Block Block
}

func (e *Env) GetStateDB() contract.StateDB {
	return e.State
}

func (e *Env) GetBlockContext() contract.BlockContext {
	return e.Block
}
