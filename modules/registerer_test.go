// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/registry"
)

type testConfigurator struct{ key string }

func (c *testConfigurator) MakeConfig() precompileconfig.Config {
	return precompileconfig.NewToggle(c.key)
}

func (*testConfigurator) Configure(precompileconfig.Config, contract.StateDB, contract.BlockContext) error {
	return nil
}

func testModule(key string, id registry.Identity) Module {
	fn := contract.NewFunction("ping()", nil, contract.View, 0, func(*contract.CallContext, abi.Values) ([]any, error) {
		return nil, nil
	})
	return Module{
		ConfigKey:    key,
		Address:      id.Address(),
		Identity:     id,
		Contract:     contract.MustNewTable(id, fn),
		Configurator: &testConfigurator{key: key},
	}
}

func TestAppendModule(t *testing.T) {
	require := require.New(t)

	registered, err := appendModule(nil, testModule("alphaConfig", registry.Alpha))
	require.NoError(err)
	registered, err = appendModule(registered, testModule("stakingConfig", registry.Staking))
	require.NoError(err)

	// kept in address order regardless of registration order
	require.Equal(registry.Staking, registered[0].Identity)
	require.Equal(registry.Alpha, registered[1].Identity)

	tests := []struct {
		name    string
		module  func() Module
		wantErr error
	}{
		{
			name:    "duplicate key",
			module:  func() Module { return testModule("alphaConfig", registry.Neuron) },
			wantErr: ErrDuplicateModule,
		},
		{
			name:    "duplicate address",
			module:  func() Module { return testModule("otherAlpha", registry.Alpha) },
			wantErr: ErrDuplicateModule,
		},
		{
			name: "outside block",
			module: func() Module {
				m := testModule("farAway", registry.Neuron)
				m.Address = common.HexToAddress("0x0900")
				return m
			},
			wantErr: ErrOutsideBlock,
		},
		{
			name: "address of another identity",
			module: func() Module {
				m := testModule("neuronConfig", registry.Neuron)
				m.Address = registry.Subnet.Address()
				return m
			},
			wantErr: ErrAddressMismatch,
		},
		{
			name: "table of another identity",
			module: func() Module {
				m := testModule("neuronConfig", registry.Neuron)
				m.Contract = contract.MustNewTable(registry.Subnet)
				return m
			},
			wantErr: ErrAddressMismatch,
		},
		{
			name: "missing table",
			module: func() Module {
				m := testModule("neuronConfig", registry.Neuron)
				m.Contract = nil
				return m
			},
			wantErr: ErrIncompleteModule,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := appendModule(registered, tt.module())
			require.ErrorIs(err, tt.wantErr)
		})
	}
	require.Len(registered, 2)
}

func TestAddressRangeOrdering(t *testing.T) {
	modules := moduleArray{
		testModule("adminUtilsConfig", registry.AdminUtils),
		testModule("balanceTransferConfig", registry.BalanceTransfer),
	}
	require.True(t, modules.Less(1, 0))
	modules.Swap(0, 1)
	require.Equal(t, registry.BalanceTransfer, modules[0].Identity)
	require.Equal(t, 2, modules.Len())
}
