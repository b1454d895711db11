// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Encode produces the canonical head/tail encoding of [values] as [types].
func Encode(types []Type, values []any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrArity, len(values), len(types))
	}
	return encodeSequence(len(types), func(i int) Type { return types[i] }, values, 0)
}

func encodeSequence(n int, typeAt func(int) Type, values []any, depth int) ([]byte, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	headLen := 0
	for i := 0; i < n; i++ {
		headLen += typeAt(i).headSize()
	}

	head := make([]byte, 0, headLen)
	var tail []byte
	for i := 0; i < n; i++ {
		t := typeAt(i)
		enc, err := encodeValue(t, values[i], depth+1)
		if err != nil {
			return nil, fmt.Errorf("value %d (%s): %w", i, t, err)
		}
		if t.IsDynamic() {
			head = append(head, word(uint64(headLen+len(tail)))...)
			tail = append(tail, enc...)
		} else {
			head = append(head, enc...)
		}
	}
	return append(head, tail...), nil
}

func encodeValue(t Type, v any, depth int) ([]byte, error) {
	switch t.Kind {
	case UintKind:
		return encodeUint(t.Bits, v)
	case BoolKind:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch(t, v)
		}
		if b {
			return word(1), nil
		}
		return word(0), nil
	case AddressKind:
		addr, ok := v.(common.Address)
		if !ok {
			return nil, mismatch(t, v)
		}
		return common.LeftPadBytes(addr.Bytes(), WordSize), nil
	case Bytes32Kind:
		b, ok := v.([32]byte)
		if !ok {
			if h, isHash := v.(common.Hash); isHash {
				b, ok = [32]byte(h), true
			}
		}
		if !ok {
			return nil, mismatch(t, v)
		}
		return b[:], nil
	case BytesKind:
		b, ok := v.([]byte)
		if !ok {
			return nil, mismatch(t, v)
		}
		return encodePacked(b), nil
	case StringKind:
		s, ok := v.(string)
		if !ok {
			return nil, mismatch(t, v)
		}
		return encodePacked([]byte(s)), nil
	case SliceKind:
		elems, ok := v.([]any)
		if !ok {
			return nil, mismatch(t, v)
		}
		elem := *t.Elem
		body, err := encodeSequence(len(elems), func(int) Type { return elem }, elems, depth)
		if err != nil {
			return nil, err
		}
		return append(word(uint64(len(elems))), body...), nil
	case TupleKind:
		members, ok := v.([]any)
		if !ok {
			return nil, mismatch(t, v)
		}
		if len(members) != len(t.Components) {
			return nil, fmt.Errorf("%w: tuple has %d members, want %d", ErrArity, len(members), len(t.Components))
		}
		return encodeSequence(len(members), func(i int) Type { return t.Components[i] }, members, depth)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnsupportedType, t.Kind)
	}
}

func encodeUint(bits int, v any) ([]byte, error) {
	switch x := v.(type) {
	case uint8:
		if bits == 8 {
			return word(uint64(x)), nil
		}
	case uint16:
		if bits == 16 {
			return word(uint64(x)), nil
		}
	case uint32:
		if bits == 32 {
			return word(uint64(x)), nil
		}
	case uint64:
		if bits == 64 {
			return word(x), nil
		}
	case *uint256.Int:
		if bits > 64 && x != nil {
			if x.BitLen() > bits {
				return nil, fmt.Errorf("%w: %d bits into uint%d", ErrOutOfRange, x.BitLen(), bits)
			}
			out := x.Bytes32()
			return out[:], nil
		}
	}
	return nil, fmt.Errorf("%w: %T for uint%d", ErrTypeMismatch, v, bits)
}

// encodePacked encodes a length-prefixed, zero-padded byte string.
func encodePacked(b []byte) []byte {
	padded := (len(b) + WordSize - 1) / WordSize * WordSize
	out := make([]byte, WordSize+padded)
	copy(out, word(uint64(len(b))))
	copy(out[WordSize:], b)
	return out
}

func word(v uint64) []byte {
	out := make([]byte, WordSize)
	for i := 0; i < 8; i++ {
		out[WordSize-1-i] = byte(v >> (8 * i))
	}
	return out
}

func mismatch(t Type, v any) error {
	return fmt.Errorf("%w: %T for %s", ErrTypeMismatch, v, t)
}
