// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	gethabi "github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/contract"
	"github.com/luxfi/subnetprecompile/enablement"
	"github.com/luxfi/subnetprecompile/ledger"
	"github.com/luxfi/subnetprecompile/memstate"
	"github.com/luxfi/subnetprecompile/modules"
	"github.com/luxfi/subnetprecompile/native"
	"github.com/luxfi/subnetprecompile/registry"
)

const namespace = "test"

var (
	caller  = common.HexToAddress("0xca11e4")
	coldkey = native.ColdkeyFromEVM(caller)
	marker  = common.Hash{0x01}

	errBoom = errors.New("boom")
)

// testTable serves the alpha identity with one function per router path.
func testTable() *contract.Table {
	return contract.MustNewTable(registry.Alpha,
		contract.NewFunction("double(uint16)", []string{"uint16"}, contract.View, 100,
			func(_ *contract.CallContext, args abi.Values) ([]any, error) {
				return []any{2 * args.Uint16(0)}, nil
			}),
		contract.NewFunction("viewWrites()", nil, contract.View, 100,
			func(call *contract.CallContext, _ abi.Values) ([]any, error) {
				return nil, call.Native.SetBalance(coldkey, 1)
			}),
		// write sets both EVM and native state, then fails when asked to
		contract.NewFunction("write(uint64,bool)", nil, contract.NonPayable, 200,
			func(call *contract.CallContext, args abi.Values) ([]any, error) {
				call.State.SetState(call.Address, marker, common.BigToHash(common.Big1))
				call.Emit(nil, nil)
				if err := call.Native.SetBalance(call.Coldkey, args.Uint64(0)); err != nil {
					return nil, err
				}
				if args.Bool(1) {
					return nil, errBoom
				}
				return nil, nil
			}),
		contract.NewFunction("pay()", []string{"uint64"}, contract.Payable, 100,
			func(call *contract.CallContext, _ abi.Values) ([]any, error) {
				rao, err := call.ValueRao()
				return []any{rao}, err
			}),
		contract.NewFunction("notOwner()", nil, contract.NonPayable, 100,
			func(*contract.CallContext, abi.Values) ([]any, error) {
				return nil, native.ErrNotSubnetOwner
			}),
		// increment is a read-modify-write of one native balance
		contract.NewFunction("increment()", nil, contract.NonPayable, 100,
			func(call *contract.CallContext, _ abi.Values) ([]any, error) {
				balance, err := call.Native.Balance(coldkey)
				if err != nil {
					return nil, err
				}
				runtime.Gosched()
				return nil, call.Native.SetBalance(coldkey, balance+1)
			}),
		contract.NewFunction("badNetuid(uint256)", nil, contract.NonPayable, 100,
			func(_ *contract.CallContext, args abi.Values) ([]any, error) {
				_, err := contract.NetUIDArg(args, 0)
				return nil, err
			}),
	)
}

type testEnv struct {
	router   *Router
	env      *memstate.Env
	ledger   *ledger.Ledger
	registry *prometheus.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mod := modules.Module{
		ConfigKey:    "alphaConfig",
		Address:      registry.Alpha.Address(),
		Identity:     registry.Alpha,
		Contract:     testTable(),
		Configurator: &enablement.Configurator{Key: "alphaConfig", Identity: registry.Alpha},
	}
	l := ledger.NewMemory(log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)))
	reg := prometheus.NewRegistry()
	r, err := New([]modules.Module{mod}, enablement.Default, l, log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)), namespace, reg)
	require.NoError(t, err)

	env := &memstate.Env{State: memstate.New(), Block: memstate.Block{Height: 10, Time: 100}}
	require.NoError(t, enablement.Initialize(env.State, registry.Alpha, true))
	return &testEnv{router: r, env: env, ledger: l, registry: reg}
}

func (e *testEnv) dispatch(input []byte, value *uint256.Int, readOnly bool) ([]byte, error) {
	return e.router.Dispatch(e.env, caller, registry.Alpha.Address(), input, value, readOnly)
}

func pack(t *testing.T, signature string, args ...any) []byte {
	t.Helper()
	fn, ok := testTable().Lookup(contract.CalculateFunctionSelector(signature))
	require.True(t, ok, signature)
	data, err := fn.Pack(args...)
	require.NoError(t, err)
	return data
}

// count reads the calls counter for one (precompile, outcome) pair.
func (e *testEnv) count(t *testing.T, precompile, outcome string) float64 {
	t.Helper()
	families, err := e.registry.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != namespace+"_calls_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range m.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels[precompileLabel] == precompile && labels[outcomeLabel] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestDispatchView(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	ret, err := e.dispatch(pack(t, "double(uint16)", uint16(21)), nil, true)
	require.NoError(err)
	require.Equal(common.LeftPadBytes([]byte{42}, 32), ret)
	require.Equal(float64(1), e.count(t, "alpha", outcomeOK))
}

func TestNoSuchPrecompile(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	for _, addr := range []common.Address{
		common.HexToAddress("0x0900"),
		registry.Staking.Address(), // in the block, not served by this router
	} {
		_, err := e.router.Dispatch(e.env, caller, addr, pack(t, "double(uint16)", uint16(1)), nil, true)
		require.ErrorIs(err, contract.ErrNoSuchPrecompile, addr.Hex())
	}
	require.Equal(float64(2), e.count(t, unknownPrecompile, "no_such_precompile"))
}

func TestDisabledSuppressesEveryFunction(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	require.NoError(enablement.Initialize(e.env.State, registry.Alpha, false))

	for _, fn := range testTable().Functions() {
		_, err := e.dispatch(fn.Selector[:], nil, fn.Mutability == contract.View)
		require.ErrorIs(err, contract.ErrPrecompileDisabled, fn.Signature)
	}
	// garbage input is not even inspected
	_, err := e.dispatch([]byte{0xde}, nil, false)
	require.ErrorIs(err, contract.ErrPrecompileDisabled)

	require.NoError(enablement.Initialize(e.env.State, registry.Alpha, true))
	_, err = e.dispatch(pack(t, "double(uint16)", uint16(1)), nil, true)
	require.NoError(err)
}

func TestConcurrentWritesSerialize(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	input := pack(t, "increment()")

	const calls = 200
	var (
		wg   sync.WaitGroup
		errs = make(chan error, calls)
	)
	for range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env := &memstate.Env{State: memstate.New(), Block: e.env.Block}
			if err := enablement.Initialize(env.State, registry.Alpha, true); err != nil {
				errs <- err
				return
			}
			_, err := e.router.Dispatch(env, caller, registry.Alpha.Address(), input, nil, false)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(err)
	}

	balance, err := e.ledger.ReadOnly().Balance(coldkey)
	require.NoError(err)
	require.Equal(uint64(calls), balance)
}

func TestUnknownSelector(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	_, err := e.dispatch([]byte{0x01, 0x02, 0x03}, nil, false)
	require.ErrorIs(err, contract.ErrUnknownSelector)

	_, err = e.dispatch([]byte{0xde, 0xad, 0xbe, 0xef}, nil, false)
	require.ErrorIs(err, contract.ErrUnknownSelector)

	var dispatchErr *contract.DispatchError
	require.ErrorAs(err, &dispatchErr)
	require.Equal(registry.Alpha, dispatchErr.Identity)
	require.Equal(contract.Selector{0xde, 0xad, 0xbe, 0xef}, dispatchErr.Selector)
}

func TestArgumentDecode(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	input := pack(t, "double(uint16)", uint16(1))

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "short payload", input: input[:contract.SelectorLength+2]},
		{name: "high bytes set", input: append(append([]byte{}, input[:contract.SelectorLength]...), common.LeftPadBytes([]byte{0x01, 0x00, 0x01}, 32)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.dispatch(tt.input, nil, true)
			require.ErrorIs(err, contract.ErrArgumentDecode)
		})
	}

	// range checks inside handlers classify the same way
	_, err := e.dispatch(pack(t, "badNetuid(uint256)", uint256.NewInt(1<<16)), nil, false)
	require.ErrorIs(err, contract.ErrArgumentDecode)
}

func TestStaticCallRejectsWrites(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	_, err := e.dispatch(pack(t, "write(uint64,bool)", uint64(5), false), nil, true)
	require.ErrorIs(err, contract.ErrUnauthorized)
	require.Equal(common.Hash{}, e.env.State.GetState(registry.Alpha.Address(), marker))

	// a view that tries to write hits the read-only native view
	_, err = e.dispatch(pack(t, "viewWrites()"), nil, true)
	require.ErrorIs(err, contract.ErrDomain)
	require.ErrorIs(err, native.ErrReadOnly)
	balance, err := e.ledger.ReadOnly().Balance(coldkey)
	require.NoError(err)
	require.Zero(balance)
}

func TestValue(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	value := uint256.NewInt(3 * native.WeiPerRao)

	_, err := e.dispatch(pack(t, "write(uint64,bool)", uint64(5), false), value, false)
	require.ErrorIs(err, contract.ErrDomain)
	require.ErrorIs(err, errNonPayable)

	ret, err := e.dispatch(pack(t, "pay()"), value, false)
	require.NoError(err)
	require.Equal(common.LeftPadBytes([]byte{3}, 32), ret)
}

func TestFailedWriteRollsBackBothStates(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	_, err := e.dispatch(pack(t, "write(uint64,bool)", uint64(5), true), nil, false)
	require.ErrorIs(err, contract.ErrDomain)
	require.ErrorIs(err, errBoom)

	require.Equal(common.Hash{}, e.env.State.GetState(registry.Alpha.Address(), marker))
	require.Empty(e.env.State.Logs())
	balance, err := e.ledger.ReadOnly().Balance(coldkey)
	require.NoError(err)
	require.Zero(balance)

	_, err = e.dispatch(pack(t, "write(uint64,bool)", uint64(5), false), nil, false)
	require.NoError(err)
	require.Equal(common.BigToHash(common.Big1), e.env.State.GetState(registry.Alpha.Address(), marker))
	require.Len(e.env.State.Logs(), 1)
	balance, err = e.ledger.ReadOnly().Balance(coldkey)
	require.NoError(err)
	require.Equal(uint64(5), balance)

	require.Equal(float64(1), e.count(t, "alpha", "domain_error"))
	require.Equal(float64(1), e.count(t, "alpha", outcomeOK))
}

func TestNativeAuthorizationFailure(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.dispatch(pack(t, "notOwner()"), nil, false)
	require.ErrorIs(t, err, contract.ErrUnauthorized)
	require.ErrorIs(t, err, native.ErrNotSubnetOwner)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "decode", err: fmt.Errorf("arg 0: %w", contract.ErrArgumentDecode), want: contract.ErrArgumentDecode},
		{name: "enablement admin", err: enablement.ErrUnauthorized, want: contract.ErrUnauthorized},
		{name: "subnet owner", err: fmt.Errorf("netuid 1: %w", native.ErrNotSubnetOwner), want: contract.ErrUnauthorized},
		{name: "insufficient stake", err: native.ErrInsufficientStake, want: contract.ErrDomain},
		{name: "unknown proxy", err: native.ErrUnknownProxy, want: contract.ErrDomain},
		{name: "handler error", err: errBoom, want: contract.ErrDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestRunChargesGas(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	input := pack(t, "double(uint16)", uint16(2))

	ret, remaining, err := e.router.Run(e.env, caller, registry.Alpha.Address(), input, nil, 150, true)
	require.NoError(err)
	require.Equal(uint64(50), remaining)
	require.Len(ret, 32)

	_, remaining, err = e.router.Run(e.env, caller, registry.Alpha.Address(), input, nil, 99, true)
	require.ErrorIs(err, contract.ErrOutOfGas)
	require.Zero(remaining)
}

func TestNewRejectsDuplicateIdentity(t *testing.T) {
	mod := modules.Module{Identity: registry.Alpha, Contract: testTable()}
	_, err := New([]modules.Module{mod, mod}, enablement.Default, ledger.NewMemory(log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false))), log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)), namespace, prometheus.NewRegistry())
	require.ErrorIs(t, err, modules.ErrDuplicateModule)
}

func TestNewRejectsDoubleMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	l := ledger.NewMemory(log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)))
	_, err := New(nil, enablement.Default, l, log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)), namespace, reg)
	require.NoError(t, err)
	_, err = New(nil, enablement.Default, l, log.NewLoggerFromHandler(log.NewTerminalHandlerWithLevel(os.Stderr, slog.LevelInfo, false)), namespace, reg)
	require.Error(t, err)
}

func TestRevertData(t *testing.T) {
	require := require.New(t)
	require.Nil(RevertData(nil))

	data := RevertData(errors.New("subnet does not exist"))
	require.Equal(errorSelector[:], data[:contract.SelectorLength])

	out, err := abi.Decode([]abi.Type{abi.String}, data[contract.SelectorLength:])
	require.NoError(err)
	require.Equal("subnet does not exist", out.String(0))

	reason, err := gethabi.UnpackRevert(data)
	require.NoError(err)
	require.Equal("subnet does not exist", reason)

	// the shared selector is never aliased
	data[0] = 0
	require.NotEqual(byte(0), errorSelector[0])
}
