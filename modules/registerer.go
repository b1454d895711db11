// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/subnetprecompile/registry"
)

var (
	ErrOutsideBlock     = errors.New("address outside the precompile block")
	ErrAddressMismatch  = errors.New("address does not belong to identity")
	ErrDuplicateModule  = errors.New("module already registered")
	ErrIncompleteModule = errors.New("incomplete module")
)

var (
	lock sync.RWMutex
	// registeredModules is a list of Module to preserve order
	// for deterministic iteration
	registeredModules = make([]Module, 0)
)

// RegisterModule registers a stateful precompile module. Modules register
// from init and treat an error as fatal.
func RegisterModule(stm Module) error {
	lock.Lock()
	defer lock.Unlock()

	modules, err := appendModule(registeredModules, stm)
	if err != nil {
		return err
	}
	registeredModules = modules
	return nil
}

func appendModule(registered []Module, stm Module) ([]Module, error) {
	address := stm.Address
	key := stm.ConfigKey

	switch {
	case key == "" || stm.Contract == nil || stm.Configurator == nil:
		return nil, fmt.Errorf("%w: %q at %s", ErrIncompleteModule, key, address)
	case !registry.InBlock(address):
		return nil, fmt.Errorf("%w: %s", ErrOutsideBlock, address)
	case stm.Identity.Address() != address:
		return nil, fmt.Errorf("%w: %s is not %s", ErrAddressMismatch, address, stm.Identity)
	case stm.Contract.Identity() != stm.Identity:
		return nil, fmt.Errorf("%w: table of %s registered as %s", ErrAddressMismatch, stm.Contract.Identity(), stm.Identity)
	}

	for _, registeredModule := range registered {
		if registeredModule.ConfigKey == key {
			return nil, fmt.Errorf("%w: name %s already used by a stateful precompile", ErrDuplicateModule, key)
		}
		if registeredModule.Address == address {
			return nil, fmt.Errorf("%w: address %s already used by a stateful precompile", ErrDuplicateModule, address)
		}
	}
	// sort by address to ensure deterministic iteration
	return insertSortedByAddress(append([]Module(nil), registered...), stm), nil
}

func GetPrecompileModuleByAddress(address common.Address) (Module, bool) {
	lock.RLock()
	defer lock.RUnlock()

	for _, stm := range registeredModules {
		if stm.Address == address {
			return stm, true
		}
	}
	return Module{}, false
}

func GetPrecompileModule(key string) (Module, bool) {
	lock.RLock()
	defer lock.RUnlock()

	for _, stm := range registeredModules {
		if stm.ConfigKey == key {
			return stm, true
		}
	}
	return Module{}, false
}

// RegisteredModules returns a copy of the registered modules in address order.
func RegisteredModules() []Module {
	lock.RLock()
	defer lock.RUnlock()

	return append([]Module(nil), registeredModules...)
}

func insertSortedByAddress(data []Module, stm Module) []Module {
	data = append(data, stm)
	sort.Sort(moduleArray(data))
	return data
}
