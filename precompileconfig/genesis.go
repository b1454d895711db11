// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package precompileconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"

	"github.com/luxfi/subnetprecompile/native"
)

var ErrNilAlloc = errors.New("nil balance in alloc")

// Genesis is the chain genesis consumed by the precompile bridge: EVM
// balances, per-precompile configuration keyed by config key, and the native
// ledger state.
type Genesis struct {
	Timestamp   uint64                          `json:"timestamp"`
	Number      uint64                          `json:"number"`
	Alloc       map[common.Address]*uint256.Int `json:"alloc,omitempty"`
	Precompiles map[string]json.RawMessage      `json:"precompiles,omitempty"`
	Native      native.Genesis                  `json:"native"`
}

// LoadGenesis reads and verifies a genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis: %w", err)
	}
	g := new(Genesis)
	if err := json.Unmarshal(raw, g); err != nil {
		return nil, fmt.Errorf("parsing genesis %s: %w", path, err)
	}
	if err := g.Verify(); err != nil {
		return nil, fmt.Errorf("invalid genesis %s: %w", path, err)
	}
	return g, nil
}

// Verify checks the parts of the genesis that do not depend on registered
// modules.
func (g *Genesis) Verify() error {
	var errs *multierror.Error
	for _, addr := range g.AllocAddresses() {
		if g.Alloc[addr] == nil {
			errs = multierror.Append(errs, fmt.Errorf("alloc %s: %w", addr, ErrNilAlloc))
		}
	}
	if err := g.Native.Verify(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("native: %w", err))
	}
	return errs.ErrorOrNil()
}

// AllocAddresses returns the funded addresses in ascending order.
func (g *Genesis) AllocAddresses() []common.Address {
	addrs := make([]common.Address, 0, len(g.Alloc))
	for addr := range g.Alloc {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Cmp(addrs[j]) < 0
	})
	return addrs
}

// PrecompileKeys returns the configured precompile keys in ascending order.
func (g *Genesis) PrecompileKeys() []string {
	keys := make([]string, 0, len(g.Precompiles))
	for key := range g.Precompiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
