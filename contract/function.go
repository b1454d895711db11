// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common/hexutil"

	"github.com/luxfi/subnetprecompile/abi"
	"github.com/luxfi/subnetprecompile/registry"
)

const SelectorLength = 4

// Selector is the 4-byte function selector that prefixes call data.
type Selector [SelectorLength]byte

func (s Selector) String() string {
	return hexutil.Encode(s[:])
}

// SplitInput separates the selector from the argument payload.
func SplitInput(input []byte) (Selector, []byte, bool) {
	var s Selector
	if len(input) < SelectorLength {
		return s, nil, false
	}
	copy(s[:], input)
	return s, input[SelectorLength:], true
}

var functionSignatureRegex = regexp.MustCompile(`^\w+\(([\w\[\](),]*)\)$`)

// CalculateFunctionSelector returns the 4 byte function selector that results from [functionSignature]
// Ex. the function setBalance(addr address, balance uint256) should be passed in as the string:
// "setBalance(address,uint256)"
func CalculateFunctionSelector(functionSignature string) Selector {
	if !functionSignatureRegex.MatchString(functionSignature) {
		panic(fmt.Errorf("invalid function signature: %q", functionSignature))
	}
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(functionSignature)))
	return s
}

// Mutability is the solidity state mutability of a function.
type Mutability uint8

const (
	View Mutability = iota
	NonPayable
	Payable
)

func (m Mutability) String() string {
	switch m {
	case View:
		return "view"
	case NonPayable:
		return "nonpayable"
	case Payable:
		return "payable"
	default:
		return fmt.Sprintf("mutability(%d)", uint8(m))
	}
}

// Handler executes one function against decoded arguments and returns the
// output values in declaration order.
type Handler func(call *CallContext, args abi.Values) ([]any, error)

// Function is one entry of a selector table.
type Function struct {
	Name       string
	Signature  string
	Selector   Selector
	Inputs     []abi.Type
	Outputs    []abi.Type
	Mutability Mutability
	Gas        uint64
	Handler    Handler
}

// NewFunction parses [signature] and [outputs] and derives the selector.
// Malformed signatures are programming errors and panic.
func NewFunction(signature string, outputs []string, mutability Mutability, gas uint64, handler Handler) *Function {
	open := strings.IndexByte(signature, '(')
	if open <= 0 || !strings.HasSuffix(signature, ")") {
		panic(fmt.Errorf("invalid function signature: %q", signature))
	}
	names, err := abi.SplitTypeList(signature[open+1 : len(signature)-1])
	if err != nil {
		panic(fmt.Errorf("invalid function signature %q: %w", signature, err))
	}
	inputs, err := abi.ParseTypes(names...)
	if err != nil {
		panic(fmt.Errorf("invalid function signature %q: %w", signature, err))
	}
	outs, err := abi.ParseTypes(outputs...)
	if err != nil {
		panic(fmt.Errorf("invalid outputs of %q: %w", signature, err))
	}
	if handler == nil {
		panic(fmt.Errorf("function %q has no handler", signature))
	}
	canonical := canonicalSignature(signature[:open], inputs)
	return &Function{
		Name:       signature[:open],
		Signature:  canonical,
		Selector:   CalculateFunctionSelector(canonical),
		Inputs:     inputs,
		Outputs:    outs,
		Mutability: mutability,
		Gas:        gas,
		Handler:    handler,
	}
}

func canonicalSignature(name string, inputs []abi.Type) string {
	parts := make([]string, len(inputs))
	for i, t := range inputs {
		parts[i] = t.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// Table maps selectors to the functions of one precompile.
type Table struct {
	identity  registry.Identity
	functions map[Selector]*Function
	ordered   []*Function
}

// NewTable builds the selector table of [identity]. Two functions sharing a
// selector or a signature is an error.
func NewTable(identity registry.Identity, functions ...*Function) (*Table, error) {
	t := &Table{
		identity:  identity,
		functions: make(map[Selector]*Function, len(functions)),
		ordered:   make([]*Function, 0, len(functions)),
	}
	signatures := make(map[string]bool, len(functions))
	for _, fn := range functions {
		if signatures[fn.Signature] {
			return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateSignature, fn.Signature, identity)
		}
		signatures[fn.Signature] = true
		if prev, ok := t.functions[fn.Selector]; ok {
			return nil, fmt.Errorf("%w: %s and %s share %s in %s", ErrSelectorCollision, prev.Signature, fn.Signature, fn.Selector, identity)
		}
		t.functions[fn.Selector] = fn
		t.ordered = append(t.ordered, fn)
	}
	return t, nil
}

// MustNewTable is NewTable for package initialization.
func MustNewTable(identity registry.Identity, functions ...*Function) *Table {
	t, err := NewTable(identity, functions...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Identity() registry.Identity {
	return t.identity
}

func (t *Table) Lookup(selector Selector) (*Function, bool) {
	fn, ok := t.functions[selector]
	return fn, ok
}

// Functions returns the table in declaration order.
func (t *Table) Functions() []*Function {
	return t.ordered
}

// Pack builds call data for [fn] from [args].
func (fn *Function) Pack(args ...any) ([]byte, error) {
	body, err := abi.Encode(fn.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", fn.Signature, err)
	}
	return append(fn.Selector[:], body...), nil
}

// UnpackOutput decodes the return data of [fn].
func (fn *Function) UnpackOutput(ret []byte) (abi.Values, error) {
	return abi.Decode(fn.Outputs, ret)
}
