// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package adminutils

import (
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/enablement"
	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/registry"
	"github.com/luxfi/subnetprecompile/simulator"
	"github.com/luxfi/subnetprecompile/subnet"
)

var (
	admin    = common.HexToAddress("0xad")
	operator = common.HexToAddress("0x0be4")
	stranger = common.HexToAddress("0x5e4e")
)

func newChain(t *testing.T) *simulator.Chain {
	t.Helper()
	g := &precompileconfig.Genesis{
		Precompiles: map[string]json.RawMessage{
			ConfigKey:        json.RawMessage(`{"blockTimestamp":0,"adminAddresses":["` + admin.Hex() + `"]}`),
			subnet.ConfigKey: json.RawMessage(`{"blockTimestamp":0,"enabled":true}`),
		},
	}
	chain, err := simulator.New(g, log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)), prometheus.NewRegistry())
	require.NoError(t, err)
	return chain
}

func invoke(t *testing.T, chain *simulator.Chain, from common.Address, signature string, args ...any) (abi.Values, error) {
	t.Helper()
	f, ok := Contract.Lookup(contract.CalculateFunctionSelector(signature))
	require.True(t, ok, signature)
	return chain.Invoke(from, registry.AdminUtils.Address(), f, nil, args...)
}

func enabled(t *testing.T, chain *simulator.Chain, id registry.Identity) bool {
	t.Helper()
	out, err := invoke(t, chain, stranger, "isPrecompileEnabled(uint8)", uint8(id))
	require.NoError(t, err)
	return out[0].(bool)
}

func TestGenesisConfig(t *testing.T) {
	chain := newChain(t)

	out, err := invoke(t, chain, stranger, "isAdmin(address)", admin)
	require.NoError(t, err)
	require.Equal(t, true, out[0])

	require.True(t, enabled(t, chain, registry.Subnet))
	require.False(t, enabled(t, chain, registry.Alpha))
	require.True(t, enabled(t, chain, registry.BalanceTransfer))
	require.True(t, enabled(t, chain, registry.AdminUtils))
}

func TestSetPrecompileEnabled(t *testing.T) {
	require := require.New(t)
	chain := newChain(t)

	_, err := invoke(t, chain, admin, "setPrecompileEnabled(uint8,bool)", uint8(registry.Alpha), true)
	require.NoError(err)
	require.True(enabled(t, chain, registry.Alpha))

	logs := chain.State().Logs()
	require.Len(logs, 1)
	require.Equal(registry.AdminUtils.Address(), logs[0].Address)
	require.Equal([]common.Hash{PrecompileEnabledEvent, {common.HashLength - 1: byte(registry.Alpha)}}, logs[0].Topics)
	require.Equal(common.LeftPadBytes([]byte{1}, 32), logs[0].Data)

	// the runtime-call name behaves identically
	_, err = invoke(t, chain, admin, "sudoToggleEvmPrecompile(uint8,bool)", uint8(registry.Alpha), false)
	require.NoError(err)
	require.False(enabled(t, chain, registry.Alpha))
}

func TestSetPrecompileEnabledRequiresAdmin(t *testing.T) {
	require := require.New(t)
	chain := newChain(t)

	_, err := invoke(t, chain, stranger, "setPrecompileEnabled(uint8,bool)", uint8(registry.Subnet), false)
	require.ErrorIs(err, contract.ErrUnauthorized)
	require.ErrorIs(err, enablement.ErrUnauthorized)
	require.True(enabled(t, chain, registry.Subnet))
	require.Empty(chain.State().Logs())
}

func TestSetPrecompileEnabledRejectsIdentity(t *testing.T) {
	require := require.New(t)
	chain := newChain(t)

	_, err := invoke(t, chain, admin, "setPrecompileEnabled(uint8,bool)", uint8(99), true)
	require.ErrorIs(err, contract.ErrDomain)
	require.ErrorIs(err, registry.ErrUnknownIdentity)

	_, err = invoke(t, chain, admin, "setPrecompileEnabled(uint8,bool)", uint8(registry.BalanceTransfer), false)
	require.ErrorIs(err, enablement.ErrNotToggleable)
	require.True(enabled(t, chain, registry.BalanceTransfer))

	_, err = invoke(t, chain, stranger, "isPrecompileEnabled(uint8)", uint8(99))
	require.ErrorIs(err, registry.ErrUnknownIdentity)
}

func TestSetPrecompileEnabledInStaticCall(t *testing.T) {
	chain := newChain(t)
	f, ok := Contract.Lookup(contract.CalculateFunctionSelector("setPrecompileEnabled(uint8,bool)"))
	require.True(t, ok)
	data, err := f.Pack(uint8(registry.Alpha), true)
	require.NoError(t, err)

	_, err = chain.Call(simulator.Message{From: admin, To: registry.AdminUtils.Address(), Data: data, ReadOnly: true})
	require.ErrorIs(t, err, contract.ErrUnauthorized)
	require.False(t, enabled(t, chain, registry.Alpha))
}

func TestSetAdmin(t *testing.T) {
	require := require.New(t)
	chain := newChain(t)

	_, err := invoke(t, chain, stranger, "setAdmin(address,bool)", stranger, true)
	require.ErrorIs(err, contract.ErrUnauthorized)

	_, err = invoke(t, chain, admin, "setAdmin(address,bool)", operator, true)
	require.NoError(err)
	_, err = invoke(t, chain, operator, "setPrecompileEnabled(uint8,bool)", uint8(registry.Neuron), true)
	require.NoError(err)
	require.True(enabled(t, chain, registry.Neuron))

	_, err = invoke(t, chain, admin, "setAdmin(address,bool)", operator, false)
	require.NoError(err)
	out, err := invoke(t, chain, stranger, "isAdmin(address)", operator)
	require.NoError(err)
	require.Equal(false, out[0])

	logs := chain.State().Logs()
	require.Len(logs, 3)
	require.Equal(AdminChangedEvent, logs[2].Topics[0])
	require.Equal(common.BytesToHash(operator.Bytes()), logs[2].Topics[1])
}

func TestConfigVerify(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr int
	}{
		{name: "valid", config: Config{AdminAddresses: []common.Address{admin, operator}}},
		{name: "empty", config: Config{}},
		{name: "duplicate", config: Config{AdminAddresses: []common.Address{admin, admin}}, wantErr: 1},
		{
			name: "everything wrong",
			config: Config{
				Upgrade:        precompileconfig.Upgrade{Disable: true},
				AdminAddresses: []common.Address{{}, admin, admin},
			},
			wantErr: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Verify()
			if tt.wantErr == 0 {
				require.NoError(t, err)
				return
			}
			var merr *multierror.Error
			require.ErrorAs(t, err, &merr)
			require.Len(t, merr.Errors, tt.wantErr)
		})
	}
}

func TestConfigEqual(t *testing.T) {
	require := require.New(t)
	zero := uint64(0)
	a := &Config{Upgrade: precompileconfig.Upgrade{BlockTimestamp: &zero}, AdminAddresses: []common.Address{admin}}
	b := &Config{Upgrade: precompileconfig.Upgrade{BlockTimestamp: &zero}, AdminAddresses: []common.Address{admin}}
	require.True(a.Equal(b))

	b.AdminAddresses = append(b.AdminAddresses, operator)
	require.False(a.Equal(b))
	require.False(a.Equal(precompileconfig.NewToggle(ConfigKey)))
}

func TestEventIDs(t *testing.T) {
	// a selector is the first four bytes of the same keccak hash
	for signature, id := range map[string]common.Hash{
		"PrecompileEnabled(uint8,bool)": PrecompileEnabledEvent,
		"AdminChanged(address,bool)":    AdminChangedEvent,
	} {
		selector := contract.CalculateFunctionSelector(signature)
		require.Equal(t, selector[:], id[:contract.SelectorLength], signature)
	}
}
