// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package abi implements the strict subset of the Ethereum contract ABI used
// by the subnet precompiles: fixed-width unsigned integers, booleans,
// addresses, bytes32 identifiers, dynamic bytes/string, dynamic arrays and
// tuples.
package abi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// WordSize is the size of a single ABI word.
const WordSize = 32

// maxDepth bounds nesting of arrays and tuples during parsing and decoding.
const maxDepth = 8

var (
	ErrUnsupportedType = errors.New("unsupported abi type")
	ErrShortInput      = errors.New("input shorter than declared arguments")
	ErrOutOfRange      = errors.New("value exceeds declared width")
	ErrInvalidBool     = errors.New("invalid bool encoding")
	ErrInvalidOffset   = errors.New("dynamic data offset out of bounds")
	ErrInvalidLength   = errors.New("dynamic data length overruns input")
	ErrTooDeep         = errors.New("abi value nested too deeply")
	ErrTypeMismatch    = errors.New("value does not match abi type")
	ErrArity           = errors.New("wrong number of values")
)

// Kind is the category of an ABI type.
type Kind uint8

const (
	UintKind Kind = iota
	BoolKind
	AddressKind
	Bytes32Kind
	BytesKind
	StringKind
	SliceKind
	TupleKind
)

// Type describes a single ABI type.
type Type struct {
	Kind Kind
	// Bits is the integer width for UintKind.
	Bits int
	// Elem is the element type for SliceKind.
	Elem *Type
	// Components are the member types for TupleKind.
	Components []Type
}

// Common types.
var (
	Uint8   = Type{Kind: UintKind, Bits: 8}
	Uint16  = Type{Kind: UintKind, Bits: 16}
	Uint32  = Type{Kind: UintKind, Bits: 32}
	Uint64  = Type{Kind: UintKind, Bits: 64}
	Uint128 = Type{Kind: UintKind, Bits: 128}
	Uint256 = Type{Kind: UintKind, Bits: 256}
	Bool    = Type{Kind: BoolKind}
	Address = Type{Kind: AddressKind}
	Bytes32 = Type{Kind: Bytes32Kind}
	Bytes   = Type{Kind: BytesKind}
	String  = Type{Kind: StringKind}
)

// SliceOf returns the dynamic array type T[].
func SliceOf(elem Type) Type {
	return Type{Kind: SliceKind, Elem: &elem}
}

// TupleOf returns the tuple type (T1,T2,...).
func TupleOf(components ...Type) Type {
	return Type{Kind: TupleKind, Components: components}
}

// String returns the canonical type name used in function signatures.
func (t Type) String() string {
	switch t.Kind {
	case UintKind:
		return "uint" + strconv.Itoa(t.Bits)
	case BoolKind:
		return "bool"
	case AddressKind:
		return "address"
	case Bytes32Kind:
		return "bytes32"
	case BytesKind:
		return "bytes"
	case StringKind:
		return "string"
	case SliceKind:
		return t.Elem.String() + "[]"
	case TupleKind:
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return "invalid"
	}
}

// IsDynamic reports whether the type is encoded in the tail section.
func (t Type) IsDynamic() bool {
	switch t.Kind {
	case BytesKind, StringKind, SliceKind:
		return true
	case TupleKind:
		for _, c := range t.Components {
			if c.IsDynamic() {
				return true
			}
		}
	}
	return false
}

// headSize is the number of bytes the type occupies in the head section.
func (t Type) headSize() int {
	if t.IsDynamic() {
		return WordSize
	}
	if t.Kind == TupleKind {
		size := 0
		for _, c := range t.Components {
			size += c.headSize()
		}
		return size
	}
	return WordSize
}

// HeadSize returns the static head size of an argument list.
func HeadSize(types []Type) int {
	size := 0
	for _, t := range types {
		size += t.headSize()
	}
	return size
}

// ParseType parses a canonical type name such as "uint16", "bytes32[]" or
// "(uint16,uint16)".
func ParseType(s string) (Type, error) {
	return parseType(strings.TrimSpace(s), 0)
}

// MustParseType is like ParseType but panics on error.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTypes parses a list of canonical type names.
func ParseTypes(names ...string) ([]Type, error) {
	types := make([]Type, len(names))
	for i, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, err
		}
		types[i] = t
	}
	return types, nil
}

// SplitTypeList splits a comma separated type list, honoring parentheses.
func SplitTypeList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrUnsupportedType, s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced parentheses in %q", ErrUnsupportedType, s)
	}
	return append(parts, s[start:]), nil
}

func parseType(s string, depth int) (Type, error) {
	if depth > maxDepth {
		return Type{}, ErrTooDeep
	}
	if strings.HasSuffix(s, "[]") {
		elem, err := parseType(s[:len(s)-2], depth+1)
		if err != nil {
			return Type{}, err
		}
		return SliceOf(elem), nil
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		names, err := SplitTypeList(s[1 : len(s)-1])
		if err != nil {
			return Type{}, err
		}
		if len(names) == 0 {
			return Type{}, fmt.Errorf("%w: empty tuple", ErrUnsupportedType)
		}
		components := make([]Type, len(names))
		for i, name := range names {
			if components[i], err = parseType(name, depth+1); err != nil {
				return Type{}, err
			}
		}
		return TupleOf(components...), nil
	}

	switch s {
	case "bool":
		return Bool, nil
	case "address":
		return Address, nil
	case "bytes32":
		return Bytes32, nil
	case "bytes":
		return Bytes, nil
	case "string":
		return String, nil
	case "uint":
		return Uint256, nil
	}
	if bits, ok := strings.CutPrefix(s, "uint"); ok {
		n, err := strconv.Atoi(bits)
		if err != nil || n <= 0 || n > 256 || n%8 != 0 {
			return Type{}, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
		}
		switch n {
		case 8, 16, 32, 64, 128, 256:
			return Type{Kind: UintKind, Bits: n}, nil
		}
	}
	return Type{}, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}
