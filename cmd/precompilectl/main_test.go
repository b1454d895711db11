// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/registry"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPrecompilesCommand(t *testing.T) {
	require := require.New(t)
	out, err := execute(t, "precompiles")
	require.NoError(err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(lines, len(registry.AllPrecompiles)+1)
	for _, info := range registry.AllPrecompiles {
		require.Contains(out, info.Address.Hex())
		require.Contains(out, info.Name)
	}
	require.Contains(out, "alphaConfig")
}

func TestSelectorsCommand(t *testing.T) {
	require := require.New(t)
	out, err := execute(t, "selectors", "--identity", "alpha")
	require.NoError(err)
	require.Contains(out, contract.CalculateFunctionSelector("getRootNetuid()").String())
	require.Contains(out, "getAlphaPrice(uint16)")
	require.NotContains(out, "burnedRegister")

	_, err = execute(t, "selectors", "--identity", "nope")
	require.ErrorIs(err, registry.ErrUnknownIdentity)
}

func TestABICommand(t *testing.T) {
	require := require.New(t)
	out, err := execute(t, "abi")
	require.NoError(err)

	var parsed map[string][]abiEntry
	require.NoError(json.Unmarshal([]byte(out), &parsed))
	require.Len(parsed, len(registry.AllPrecompiles))

	var found bool
	for _, entry := range parsed["neuron"] {
		if entry.Name == "burnedRegister" {
			found = true
			require.Equal("payable", entry.StateMutability)
			require.Equal([]abiArgument{{Type: "uint16"}, {Type: "bytes32"}}, entry.Inputs)
		}
	}
	require.True(found)
}

func TestCallCommand(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "genesis.json")
	genesis := `{
  "timestamp": 0,
  "precompiles": {"alphaConfig": {"blockTimestamp": 0, "enabled": true}},
  "native": {}
}`
	require.NoError(os.WriteFile(path, []byte(genesis), 0o600))

	out, err := execute(t, "call",
		"--genesis", path,
		"--to", "alpha",
		"--data", contract.CalculateFunctionSelector("getRootNetuid()").String(),
		"--data", "0xdeadbeef",
		"--readonly",
		"--metrics",
	)
	require.NoError(err)
	require.Contains(out, "call 0 returned: 0x"+strings.Repeat("0", 64))
	require.Contains(out, "call 1 reverted")
	require.Contains(out, "precompile_calls_total")
	// the ledger reports genesis through the CLI logger
	require.Contains(out, "applied native genesis")
}

func TestCallCommandRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no data", args: []string{"call", "--to", "alpha"}, want: errNoCalls.Error()},
		{name: "unknown target", args: []string{"call", "--to", "nowhere", "--data", "0x00"}, want: "neither an address nor a precompile name"},
		{name: "bad data", args: []string{"call", "--to", "alpha", "--data", "zz"}, want: "invalid --data"},
		{name: "bad value", args: []string{"call", "--to", "alpha", "--data", "0x00", "--value", "-1"}, want: "invalid --value"},
		{name: "missing genesis", args: []string{"call", "--genesis", "/nonexistent/genesis.json", "--to", "alpha", "--data", "0x00"}, want: "reading genesis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.ErrorContains(t, err, tt.want)
		})
	}
}
