// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package modules

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/precompileconfig"
)

var ErrUnknownConfigKey = errors.New("no precompile registered for config key")

// ParseConfigs decodes and verifies every precompile entry of [g] against
// the registered modules. All problems are reported together.
func ParseConfigs(g *precompileconfig.Genesis) ([]precompileconfig.Config, error) {
	var (
		errs    *multierror.Error
		configs = make([]precompileconfig.Config, 0, len(g.Precompiles))
	)
	for _, key := range g.PrecompileKeys() {
		module, ok := GetPrecompileModule(key)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: %s", ErrUnknownConfigKey, key))
			continue
		}
		cfg := module.MakeConfig()
		if err := json.Unmarshal(g.Precompiles[key], cfg); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		if err := cfg.Verify(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, errs.ErrorOrNil()
}

// Configure applies every config that has taken effect by the timestamp of
// [blockContext].
func Configure(configs []precompileconfig.Config, state contract.StateDB, blockContext contract.BlockContext) error {
	for _, cfg := range configs {
		if !precompileconfig.ActiveAt(cfg, blockContext.Timestamp()) {
			continue
		}
		module, ok := GetPrecompileModule(cfg.Key())
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownConfigKey, cfg.Key())
		}
		if err := module.Configure(cfg, state, blockContext); err != nil {
			return fmt.Errorf("configuring %s: %w", cfg.Key(), err)
		}
	}
	return nil
}

// Activate applies every config whose timestamp falls in
// (parentTimestamp, blockContext.Timestamp()], in order. It is called when
// the chain moves past [parentTimestamp].
func Activate(configs []precompileconfig.Config, parentTimestamp uint64, state contract.StateDB, blockContext contract.BlockContext) error {
	var activated []precompileconfig.Config
	for _, cfg := range configs {
		if precompileconfig.ActiveAt(cfg, parentTimestamp) {
			continue
		}
		activated = append(activated, cfg)
	}
	return Configure(activated, state, blockContext)
}
