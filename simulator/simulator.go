// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package simulator runs precompile calls against an in-memory chain built
// from a genesis, outside of a full node.
package simulator

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/tracing"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/enablement"
	"github.com/luxfi/subnetprecompile/ledger"
	"github.com/luxfi/subnetprecompile/memstate"
	"github.com/luxfi/subnetprecompile/modules"
	"github.com/luxfi/subnetprecompile/precompileconfig"
	"github.com/luxfi/subnetprecompile/router"
)

const metricsNamespace = "precompile"

var ErrInsufficientFunds = errors.New("insufficient funds for value transfer")

// Message is one call into the chain.
type Message struct {
	From     common.Address
	To       common.Address
	Data     []byte
	Value    *uint256.Int
	ReadOnly bool
}

// Chain is an EVM state, a native ledger and a router over every registered
// module.
type Chain struct {
	env     *memstate.Env
	ledger  *ledger.Ledger
	router  *router.Router
	configs []precompileconfig.Config
	log     log.Logger
}

// New builds a chain from [g]. Precompile configs that are active at the
// genesis timestamp are applied before the first call.
func New(g *precompileconfig.Genesis, logger log.Logger, registerer prometheus.Registerer) (*Chain, error) {
	if err := g.Verify(); err != nil {
		return nil, err
	}
	configs, err := modules.ParseConfigs(g)
	if err != nil {
		return nil, err
	}

	env := &memstate.Env{
		State: memstate.New(),
		Block: memstate.Block{Height: g.Number, Time: g.Timestamp},
	}
	for _, addr := range g.AllocAddresses() {
		env.State.AddBalance(addr, g.Alloc[addr], tracing.BalanceIncreaseGenesisBalance)
	}

	l := ledger.NewMemory(logger)
	if err := l.ApplyGenesis(&g.Native); err != nil {
		return nil, err
	}
	if err := modules.Configure(configs, env.State, env.Block); err != nil {
		return nil, err
	}

	r, err := router.New(modules.RegisteredModules(), enablement.Default, l, logger, metricsNamespace, registerer)
	if err != nil {
		return nil, err
	}
	return &Chain{
		env:     env,
		ledger:  l,
		router:  r,
		configs: configs,
		log:     logger,
	}, nil
}

func (c *Chain) State() *memstate.StateDB { return c.env.State }
func (c *Chain) Ledger() *ledger.Ledger   { return c.ledger }
func (c *Chain) Router() *router.Router   { return c.router }
func (c *Chain) Block() memstate.Block    { return c.env.Block }

// Advance moves the chain forward by [blocks], [seconds] apart, and applies
// the precompile configs that activate on the way.
func (c *Chain) Advance(blocks, seconds uint64) error {
	parent := c.env.Block.Time
	c.env.Block.Height += blocks
	c.env.Block.Time += blocks * seconds
	if err := modules.Activate(c.configs, parent, c.env.State, c.env.Block); err != nil {
		return err
	}
	c.log.Debug("chain advanced",
		"height", c.env.Block.Height,
		"time", c.env.Block.Time,
	)
	return nil
}

// Call executes [msg]. The value moves from the sender to the precompile
// first, and the whole call is reverted if dispatch fails.
func (c *Chain) Call(msg Message) ([]byte, error) {
	state := c.env.State
	snapshot := state.Snapshot()

	if msg.Value != nil && !msg.Value.IsZero() {
		if msg.ReadOnly {
			return nil, fmt.Errorf("%w: value in static call", contract.ErrUnauthorized)
		}
		if state.GetBalance(msg.From).Lt(msg.Value) {
			return nil, fmt.Errorf("%w: %s has %s, sends %s", ErrInsufficientFunds, msg.From, state.GetBalance(msg.From), msg.Value)
		}
		state.SubBalance(msg.From, msg.Value, tracing.BalanceChangeTransfer)
		state.AddBalance(msg.To, msg.Value, tracing.BalanceChangeTransfer)
	}

	ret, err := c.router.Dispatch(c.env, msg.From, msg.To, msg.Data, msg.Value, msg.ReadOnly)
	if err != nil {
		state.RevertToSnapshot(snapshot)
		return nil, err
	}
	return ret, nil
}

// Invoke packs [args] for [fn], calls it at [to] and unpacks the result.
// View functions are called read-only.
func (c *Chain) Invoke(from, to common.Address, fn *contract.Function, value *uint256.Int, args ...any) (abi.Values, error) {
	data, err := fn.Pack(args...)
	if err != nil {
		return nil, err
	}
	ret, err := c.Call(Message{
		From:     from,
		To:       to,
		Data:     data,
		Value:    value,
		ReadOnly: fn.Mutability == contract.View,
	})
	if err != nil {
		return nil, err
	}
	return fn.UnpackOutput(ret)
}
