// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package memstate

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	ethtypes "github.com/luxfi/geth/core/types"
	"github.com/stretchr/testify/require"
)

var (
	addr = common.HexToAddress("0x01")
	slot = common.HexToHash("0x02")
)

func TestSnapshotRevert(t *testing.T) {
	require := require.New(t)
	s := New()

	s.SetState(addr, slot, common.HexToHash("0x0a"))
	s.AddBalance(addr, uint256.NewInt(100), tracing.BalanceChangeUnspecified)

	snap := s.Snapshot()
	prev := s.SetState(addr, slot, common.HexToHash("0x0b"))
	require.Equal(common.HexToHash("0x0a"), prev)
	s.SubBalance(addr, uint256.NewInt(40), tracing.BalanceChangeTransfer)
	s.AddLog(&ethtypes.Log{Address: addr})
	other := common.HexToAddress("0x03")
	s.AddBalance(other, uint256.NewInt(1), tracing.BalanceChangeTransfer)

	require.Equal(uint64(60), s.GetBalance(addr).Uint64())
	require.Len(s.Logs(), 1)
	require.True(s.Exist(other))

	s.RevertToSnapshot(snap)
	require.Equal(common.HexToHash("0x0a"), s.GetState(addr, slot))
	require.Equal(uint64(100), s.GetBalance(addr).Uint64())
	require.Empty(s.Logs())
	require.False(s.Exist(other))
	require.True(s.GetBalance(other).IsZero())
}

func TestNestedSnapshots(t *testing.T) {
	require := require.New(t)
	s := New()

	outer := s.Snapshot()
	s.SetState(addr, slot, common.HexToHash("0x01"))
	inner := s.Snapshot()
	s.SetState(addr, slot, common.HexToHash("0x02"))

	s.RevertToSnapshot(inner)
	require.Equal(common.HexToHash("0x01"), s.GetState(addr, slot))

	s.RevertToSnapshot(outer)
	require.Equal(common.Hash{}, s.GetState(addr, slot))

	// reverted revisions are gone
	s.SetState(addr, slot, common.HexToHash("0x03"))
	s.RevertToSnapshot(inner)
	require.Equal(common.HexToHash("0x03"), s.GetState(addr, slot))
}

func TestGetBalanceIsACopy(t *testing.T) {
	s := New()
	s.AddBalance(addr, uint256.NewInt(5), tracing.BalanceChangeUnspecified)
	s.GetBalance(addr).SetUint64(99)
	require.Equal(t, uint64(5), s.GetBalance(addr).Uint64())
}

func TestEnv(t *testing.T) {
	env := &Env{State: New(), Block: Block{Height: 7, Time: 1000}}
	require.Equal(t, uint64(7), env.GetBlockContext().Number().Uint64())
	require.Equal(t, uint64(1000), env.GetBlockContext().Timestamp())
	require.Same(t, env.State, env.GetStateDB())
}
