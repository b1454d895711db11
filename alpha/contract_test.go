// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package alpha

import (
	"log/slog"
	"os"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/subnetprecompile/amm"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/enablement"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/registry"
	"github.com/luxfi/subnetprecompile/simulator"
)

var caller = common.HexToAddress("0xca11e4")

func newChain(t *testing.T) *simulator.Chain {
	t.Helper()
	g := &precompileconfig.Genesis{
		Native: native.Genesis{
			Subnets: []native.SubnetGenesis{
				{NetUID: 1, Mechanism: amm.Dynamic, TaoIn: 1000, AlphaIn: 500, AlphaOut: 250},
				{NetUID: 2, Mechanism: amm.Dynamic, TaoIn: 30 * native.RaoPerTao, AlphaIn: 10 * native.RaoPerTao},
			},
		},
	}
	chain, err := simulator.New(g, log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)), prometheus.NewRegistry())
	require.NoError(t, err)
	require.NoError(t, enablement.Initialize(chain.State(), registry.Alpha, true))
	return chain
}

func fn(t *testing.T, signature string) *contract.Function {
	t.Helper()
	f, ok := Contract.Lookup(contract.CalculateFunctionSelector(signature))
	require.True(t, ok, signature)
	return f
}

func TestPoolViews(t *testing.T) {
	chain := newChain(t)

	tests := []struct {
		signature string
		args      []any
		want      any
	}{
		{signature: "getAlphaPrice(uint16)", args: []any{uint16(1)}, want: uint256.NewInt(2)},
		{signature: "getAlphaPrice(uint16)", args: []any{uint16(0)}, want: uint256.NewInt(1)},
		{signature: "getMovingAlphaPrice(uint16)", args: []any{uint16(2)}, want: uint256.NewInt(3)},
		{signature: "getTaoInPool(uint16)", args: []any{uint16(1)}, want: uint64(1000)},
		{signature: "getAlphaInPool(uint16)", args: []any{uint16(1)}, want: uint64(500)},
		{signature: "getAlphaOutPool(uint16)", args: []any{uint16(1)}, want: uint64(250)},
		{signature: "getAlphaIssuance(uint16)", args: []any{uint16(1)}, want: uint64(750)},
		{signature: "getSubnetMechanism(uint16)", args: []any{uint16(1)}, want: uint16(amm.Dynamic)},
		{signature: "getSubnetMechanism(uint16)", args: []any{uint16(0)}, want: uint16(amm.Stable)},
		{signature: "getSubnetVolume(uint16)", args: []any{uint16(1)}, want: uint256.NewInt(0)},
		{signature: "getEMAPriceHalvingBlocks(uint16)", args: []any{uint16(1)}, want: amm.DefaultHalvingBlocks},
		{signature: "getTaoWeight()", want: uint256.NewInt(0)},
		{signature: "getMinimumPoolLiquidity()", want: uint256.NewInt(10_000_000)},
		{signature: "getRootNetuid()", want: uint16(0)},
	}
	for _, tt := range tests {
		t.Run(tt.signature, func(t *testing.T) {
			out, err := chain.Invoke(caller, registry.Alpha.Address(), fn(t, tt.signature), nil, tt.args...)
			require.NoError(t, err)
			require.Equal(t, tt.want, out[0])
		})
	}
}

func TestUnknownSubnet(t *testing.T) {
	chain := newChain(t)
	for _, signature := range []string{"getAlphaPrice(uint16)", "getTaoInPool(uint16)", "getEMAPriceHalvingBlocks(uint16)"} {
		_, err := chain.Invoke(caller, registry.Alpha.Address(), fn(t, signature), nil, uint16(9))
		require.ErrorIs(t, err, contract.ErrDomain, signature)
		require.ErrorIs(t, err, native.ErrUnknownSubnet, signature)
	}
	_, err := chain.Invoke(caller, registry.Alpha.Address(), fn(t, "simSwapTaoForAlpha(uint16,uint64)"), nil, uint16(9), uint64(1))
	require.ErrorIs(t, err, native.ErrUnknownSubnet)
}

func TestSimSwapZeroLeavesReserves(t *testing.T) {
	require := require.New(t)
	chain := newChain(t)
	simSwap := fn(t, "simSwapTaoForAlpha(uint16,uint64)")

	out, err := chain.Invoke(caller, registry.Alpha.Address(), simSwap, nil, uint16(1), uint64(0))
	require.NoError(err)
	require.Equal(uint256.NewInt(0), out.Uint256(0))

	taoIn, err := chain.Invoke(caller, registry.Alpha.Address(), fn(t, "getTaoInPool(uint16)"), nil, uint16(1))
	require.NoError(err)
	require.Equal(uint64(1000), taoIn.Uint64(0))
	alphaIn, err := chain.Invoke(caller, registry.Alpha.Address(), fn(t, "getAlphaInPool(uint16)"), nil, uint16(1))
	require.NoError(err)
	require.Equal(uint64(500), alphaIn.Uint64(0))
}

func TestSimSwapIsIdempotent(t *testing.T) {
	require := require.New(t)
	chain := newChain(t)

	for _, signature := range []string{"simSwapTaoForAlpha(uint16,uint64)", "simSwapAlphaForTao(uint16,uint64)"} {
		data, err := fn(t, signature).Pack(uint16(2), uint64(native.RaoPerTao))
		require.NoError(err)
		msg := simulator.Message{From: caller, To: registry.Alpha.Address(), Data: data, ReadOnly: true}

		first, err := chain.Call(msg)
		require.NoError(err)
		second, err := chain.Call(msg)
		require.NoError(err)
		require.Equal(first, second)

		out, err := fn(t, signature).UnpackOutput(first)
		require.NoError(err)
		require.False(out.Uint256(0).IsZero())
	}
}

func TestRejectsOutOfRangeNetuid(t *testing.T) {
	chain := newChain(t)
	getPrice := fn(t, "getAlphaPrice(uint16)")

	// 0x10001 does not fit uint16
	data := append(getPrice.Selector[:], common.LeftPadBytes([]byte{0x01, 0x00, 0x01}, 32)...)
	_, err := chain.Call(simulator.Message{From: caller, To: registry.Alpha.Address(), Data: data, ReadOnly: true})
	require.ErrorIs(t, err, contract.ErrArgumentDecode)

	// two byte payload
	data = append(getPrice.Selector[:], 0x00, 0x01)
	_, err = chain.Call(simulator.Message{From: caller, To: registry.Alpha.Address(), Data: data, ReadOnly: true})
	require.ErrorIs(t, err, contract.ErrArgumentDecode)
}

func TestDisabled(t *testing.T) {
	chain := newChain(t)
	require.NoError(t, enablement.Initialize(chain.State(), registry.Alpha, false))

	for _, f := range Contract.Functions() {
		_, err := chain.Invoke(caller, registry.Alpha.Address(), f, nil, zeroArgs(f)...)
		require.ErrorIs(t, err, contract.ErrPrecompileDisabled, f.Signature)
	}
}

func zeroArgs(f *contract.Function) []any {
	args := make([]any, len(f.Inputs))
	for i, in := range f.Inputs {
		switch in.Bits {
		case 16:
			args[i] = uint16(0)
		case 64:
			args[i] = uint64(0)
		}
	}
	return args
}
