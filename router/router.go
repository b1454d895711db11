// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package router dispatches EVM calls at subnet precompile addresses to the
// registered handlers.
package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/enablement"
	"github.com/luxfi/subnetprecompile/modules"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

var errNonPayable = errors.New("value sent to non-payable function")

// Router holds no per-call state and may be shared by concurrent callers as
// long as each call brings its own StateDB.
type Router struct {
	tables     map[registry.Identity]*contract.Table
	enablement contract.Enablement
	store      native.Store
	log        log.Logger
	metrics    *metrics
}

// New builds a router over [mods]. Metrics are registered on [registerer]
// under [namespace].
func New(
	mods []modules.Module,
	enabled contract.Enablement,
	store native.Store,
	logger log.Logger,
	namespace string,
	registerer prometheus.Registerer,
) (*Router, error) {
	m, err := newMetrics(namespace, registerer)
	if err != nil {
		return nil, fmt.Errorf("registering router metrics: %w", err)
	}
	r := &Router{
		tables:     make(map[registry.Identity]*contract.Table, len(mods)),
		enablement: enabled,
		store:      store,
		log:        logger,
		metrics:    m,
	}
	for _, mod := range mods {
		if _, ok := r.tables[mod.Identity]; ok {
			return nil, fmt.Errorf("%w: %s", modules.ErrDuplicateModule, mod.Identity)
		}
		r.tables[mod.Identity] = mod.Contract
	}
	return r, nil
}

// Table returns the selector table served for [id].
func (r *Router) Table(id registry.Identity) (*contract.Table, bool) {
	t, ok := r.tables[id]
	return t, ok
}

// Dispatch executes one call without gas accounting. The call value is
// expected to have been credited to [addr] already, as the EVM does before
// entering a precompile.
func (r *Router) Dispatch(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	value *uint256.Int,
	readOnly bool,
) ([]byte, error) {
	return r.call(accessibleState, caller, addr, input, value, readOnly, nil)
}

// Run executes one call, charging the flat gas cost of the selected function
// before it runs.
func (r *Router) Run(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	value *uint256.Int,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	ret, err := r.call(accessibleState, caller, addr, input, value, readOnly, &suppliedGas)
	return ret, suppliedGas, err
}

func (r *Router) call(
	accessibleState contract.AccessibleState,
	caller common.Address,
	addr common.Address,
	input []byte,
	value *uint256.Int,
	readOnly bool,
	gas *uint64,
) ([]byte, error) {
	start := time.Now()
	dispatchErr := &contract.DispatchError{Address: addr}
	fail := func(kind, cause error) ([]byte, error) {
		dispatchErr.Kind = kind
		dispatchErr.Err = cause
		label := unknownPrecompile
		if kind != contract.ErrNoSuchPrecompile {
			label = dispatchErr.Identity.String()
		}
		r.metrics.observe(label, outcome(kind), start)
		r.log.Debug("precompile call failed",
			"precompile", label,
			"selector", dispatchErr.Selector,
			"caller", caller,
			"err", dispatchErr,
		)
		return nil, dispatchErr
	}

	id, ok := registry.Lookup(addr)
	if !ok {
		return fail(contract.ErrNoSuchPrecompile, nil)
	}
	dispatchErr.Identity = id
	table, ok := r.tables[id]
	if !ok {
		return fail(contract.ErrNoSuchPrecompile, nil)
	}

	state := accessibleState.GetStateDB()
	if !r.enablement.IsEnabled(state, id) {
		return fail(contract.ErrPrecompileDisabled, nil)
	}

	selector, payload, ok := contract.SplitInput(input)
	if !ok {
		return fail(contract.ErrUnknownSelector, fmt.Errorf("%d byte input", len(input)))
	}
	dispatchErr.Selector = selector
	fn, ok := table.Lookup(selector)
	if !ok {
		return fail(contract.ErrUnknownSelector, nil)
	}

	if gas != nil {
		remaining, err := contract.DeductGas(*gas, fn.Gas)
		*gas = remaining
		if err != nil {
			return fail(contract.ErrOutOfGas, fmt.Errorf("%s needs %d", fn.Signature, fn.Gas))
		}
	}

	args, err := abi.Decode(fn.Inputs, payload)
	if err != nil {
		return fail(contract.ErrArgumentDecode, err)
	}
	if readOnly && fn.Mutability != contract.View {
		return fail(contract.ErrUnauthorized, fmt.Errorf("%s %s in static call", fn.Mutability, fn.Signature))
	}
	if value != nil && !value.IsZero() && fn.Mutability != contract.Payable {
		return fail(contract.ErrDomain, errNonPayable)
	}

	callCtx := &contract.CallContext{
		Identity:    id,
		Address:     addr,
		Caller:      caller,
		Coldkey:     native.ColdkeyFromEVM(caller),
		Value:       value,
		BlockNumber: blockNumber(accessibleState.GetBlockContext()),
		State:       state,
		Enablement:  r.enablement,
		Log:         r.log,
	}

	var ret []byte
	if fn.Mutability == contract.View {
		callCtx.Native = r.store.ReadOnly()
		ret, err = execute(fn, callCtx, args)
	} else {
		ret, err = r.executeMutating(fn, callCtx, args)
	}
	if err != nil {
		return fail(classify(err), err)
	}

	r.metrics.observe(id.String(), outcomeOK, start)
	r.log.Debug("precompile call",
		"precompile", id,
		"function", fn.Signature,
		"caller", caller,
	)
	return ret, nil
}

// executeMutating runs [fn] under an EVM snapshot and a native transaction.
// Both are rolled back together on any failure.
func (r *Router) executeMutating(fn *contract.Function, callCtx *contract.CallContext, args abi.Values) ([]byte, error) {
	snapshot := callCtx.State.Snapshot()
	tx := r.store.Begin()
	callCtx.Native = tx

	ret, err := execute(fn, callCtx, args)
	if err == nil {
		err = tx.Commit()
	}
	if err != nil {
		tx.Discard()
		callCtx.State.RevertToSnapshot(snapshot)
		return nil, err
	}
	return ret, nil
}

func execute(fn *contract.Function, callCtx *contract.CallContext, args abi.Values) ([]byte, error) {
	outputs, err := fn.Handler(callCtx, args)
	if err != nil {
		return nil, err
	}
	ret, err := abi.Encode(fn.Outputs, outputs)
	if err != nil {
		return nil, fmt.Errorf("encoding result of %s: %w", fn.Signature, err)
	}
	return ret, nil
}

// classify maps a handler failure onto the dispatch taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, contract.ErrArgumentDecode):
		return contract.ErrArgumentDecode
	case errors.Is(err, contract.ErrUnauthorized),
		errors.Is(err, enablement.ErrUnauthorized),
		errors.Is(err, native.ErrNotSubnetOwner):
		return contract.ErrUnauthorized
	default:
		return contract.ErrDomain
	}
}

func outcome(kind error) string {
	switch kind {
	case contract.ErrNoSuchPrecompile:
		return "no_such_precompile"
	case contract.ErrPrecompileDisabled:
		return "disabled"
	case contract.ErrUnknownSelector:
		return "unknown_selector"
	case contract.ErrArgumentDecode:
		return "decode_error"
	case contract.ErrUnauthorized:
		return "unauthorized"
	case contract.ErrOutOfGas:
		return "out_of_gas"
	default:
		return "domain_error"
	}
}

func blockNumber(block contract.BlockContext) uint64 {
	if block == nil || block.Number() == nil {
		return 0
	}
	return block.Number().Uint64()
}
