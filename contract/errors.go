// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package contract

import (
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/subnetprecompile/registry"
)

// Dispatch failure kinds. Every error returned by the router wraps exactly
// one of them.
var (
	ErrNoSuchPrecompile   = errors.New("no such precompile")
	ErrPrecompileDisabled = errors.New("precompile disabled")
	ErrUnknownSelector    = errors.New("unknown selector")
	ErrArgumentDecode     = errors.New("argument decode error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrDomain             = errors.New("domain error")
	ErrOutOfGas           = errors.New("out of gas")
)

// Registration errors.
var (
	ErrSelectorCollision  = errors.New("selector collision")
	ErrDuplicateSignature = errors.New("duplicate signature")
)

// DispatchError is the typed failure of a single precompile call.
type DispatchError struct {
	Kind     error
	Address  common.Address
	Identity registry.Identity
	Selector Selector
	Err      error
}

func (e *DispatchError) Error() string {
	var msg string
	switch e.Kind {
	case ErrNoSuchPrecompile:
		msg = fmt.Sprintf("%s at %s", e.Kind, e.Address)
	case ErrPrecompileDisabled:
		msg = fmt.Sprintf("%s: %s", e.Identity, e.Kind)
	default:
		msg = fmt.Sprintf("%s %s: %s", e.Identity, e.Selector, e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause to errors.Is.
func (e *DispatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
