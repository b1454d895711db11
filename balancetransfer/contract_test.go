// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package balancetransfer

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/registry"
	"github.com/luxfi/subnetprecompile/simulator"
)

var (
	sender      = common.HexToAddress("0x5e4d")
	destination = native.AccountID{0xde, 0x57}
	oneTao      = new(uint256.Int).Mul(uint256.NewInt(native.RaoPerTao), uint256.NewInt(native.WeiPerRao))
)

func newChain(t *testing.T) *simulator.Chain {
	t.Helper()
	g := &precompileconfig.Genesis{
		Alloc: map[common.Address]*uint256.Int{
			sender: new(uint256.Int).Mul(oneTao, uint256.NewInt(10)),
		},
		Precompiles: map[string]json.RawMessage{
			ConfigKey: json.RawMessage(`{"upgrade":{"blockTimestamp":0}}`),
		},
	}
	chain, err := simulator.New(g, log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)), prometheus.NewRegistry())
	require.NoError(t, err)
	return chain
}

func balance(t *testing.T, chain *simulator.Chain, account native.AccountID) uint64 {
	t.Helper()
	b, err := chain.Ledger().ReadOnly().Balance(account)
	require.NoError(t, err)
	return b
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	chain := newChain(t)
	transferFn := Contract.Functions()[0]

	// always on without any enablement write
	value := new(uint256.Int).Add(oneTao, uint256.NewInt(7))
	_, err := chain.Invoke(sender, registry.BalanceTransfer.Address(), transferFn, value, [32]byte(destination))
	require.NoError(err)

	require.Equal(native.RaoPerTao, balance(t, chain, destination))
	require.Equal(value, chain.State().GetBalance(registry.BalanceTransfer.Address()))

	want := new(uint256.Int).Mul(oneTao, uint256.NewInt(9))
	want.SubUint64(want, 7)
	require.Equal(want, chain.State().GetBalance(sender))
}

func TestTransferZeroValue(t *testing.T) {
	chain := newChain(t)
	_, err := chain.Invoke(sender, registry.BalanceTransfer.Address(), Contract.Functions()[0], nil, [32]byte(destination))
	require.NoError(t, err)
	require.Zero(t, balance(t, chain, destination))
}

func TestTransferInStaticCall(t *testing.T) {
	chain := newChain(t)
	data, err := Contract.Functions()[0].Pack([32]byte(destination))
	require.NoError(t, err)

	_, err = chain.Call(simulator.Message{From: sender, To: registry.BalanceTransfer.Address(), Data: data, ReadOnly: true})
	require.ErrorIs(t, err, contract.ErrUnauthorized)
}

func TestConfigEqual(t *testing.T) {
	zero := uint64(0)
	a := &Config{Upgrade: precompileconfig.Upgrade{BlockTimestamp: &zero}}
	b := &Config{Upgrade: precompileconfig.Upgrade{BlockTimestamp: &zero}}
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(&Config{}))
	require.False(t, a.Equal(precompileconfig.NewToggle(ConfigKey)))
	require.Equal(t, ConfigKey, a.Key())
}
