// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package abi

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// Decode decodes [data] (without the 4-byte selector) as the argument list
// [types]. Out-of-range integers, malformed booleans and out-of-bounds dynamic
// offsets are rejected; the decoder never reads past the end of [data].
func Decode(types []Type, data []byte) (Values, error) {
	return decodeSequence(len(types), func(i int) Type { return types[i] }, data, 0)
}

// decodeSequence decodes [n] values laid out head/tail starting at data[0].
func decodeSequence(n int, typeAt func(int) Type, data []byte, depth int) ([]any, error) {
	if depth > maxDepth {
		return nil, ErrTooDeep
	}
	headLen := 0
	for i := 0; i < n; i++ {
		headLen += typeAt(i).headSize()
	}
	if len(data) < headLen {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortInput, headLen, len(data))
	}

	values := make([]any, n)
	pos := 0
	for i := 0; i < n; i++ {
		t := typeAt(i)
		size := t.headSize()
		var (
			v   any
			err error
		)
		if t.IsDynamic() {
			var offset int
			offset, err = readOffset(data[pos:pos+WordSize], len(data))
			if err == nil {
				v, err = decodeDynamic(t, data[offset:], depth+1)
			}
		} else {
			v, err = decodeStatic(t, data[pos:pos+size], depth+1)
		}
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, t, err)
		}
		values[i] = v
		pos += size
	}
	return values, nil
}

func decodeStatic(t Type, word []byte, depth int) (any, error) {
	switch t.Kind {
	case UintKind:
		return decodeUint(t.Bits, word)
	case BoolKind:
		if !isZero(word[:WordSize-1]) || word[WordSize-1] > 1 {
			return nil, ErrInvalidBool
		}
		return word[WordSize-1] == 1, nil
	case AddressKind:
		if !isZero(word[:WordSize-common.AddressLength]) {
			return nil, fmt.Errorf("%w: address", ErrOutOfRange)
		}
		return common.BytesToAddress(word[WordSize-common.AddressLength : WordSize]), nil
	case Bytes32Kind:
		var out [32]byte
		copy(out[:], word[:WordSize])
		return out, nil
	case TupleKind:
		return decodeSequence(len(t.Components), func(i int) Type { return t.Components[i] }, word, depth)
	default:
		return nil, fmt.Errorf("%w: %s is not static", ErrUnsupportedType, t)
	}
}

func decodeDynamic(t Type, data []byte, depth int) (any, error) {
	switch t.Kind {
	case BytesKind, StringKind:
		length, err := readLength(data)
		if err != nil {
			return nil, err
		}
		if length > len(data)-WordSize {
			return nil, fmt.Errorf("%w: length %d, available %d", ErrInvalidLength, length, len(data)-WordSize)
		}
		payload := make([]byte, length)
		copy(payload, data[WordSize:WordSize+length])
		if t.Kind == StringKind {
			return string(payload), nil
		}
		return payload, nil
	case SliceKind:
		n, err := readLength(data)
		if err != nil {
			return nil, err
		}
		elem := *t.Elem
		if elem.headSize() == 0 {
			return nil, fmt.Errorf("%w: zero-sized element %s", ErrUnsupportedType, elem)
		}
		// every element needs at least one head slot; reject before allocating
		if n > (len(data)-WordSize)/elem.headSize() {
			return nil, fmt.Errorf("%w: %d elements of %s", ErrInvalidLength, n, elem)
		}
		return decodeSequence(n, func(int) Type { return elem }, data[WordSize:], depth)
	case TupleKind:
		return decodeSequence(len(t.Components), func(i int) Type { return t.Components[i] }, data, depth)
	default:
		return nil, fmt.Errorf("%w: %s is not dynamic", ErrUnsupportedType, t)
	}
}

func decodeUint(bits int, word []byte) (any, error) {
	width := bits / 8
	if !isZero(word[:WordSize-width]) {
		return nil, fmt.Errorf("%w: uint%d", ErrOutOfRange, bits)
	}
	low := word[WordSize-width : WordSize]
	switch bits {
	case 8:
		return low[0], nil
	case 16:
		return uint16(low[0])<<8 | uint16(low[1]), nil
	case 32:
		var v uint32
		for _, b := range low {
			v = v<<8 | uint32(b)
		}
		return v, nil
	case 64:
		var v uint64
		for _, b := range low {
			v = v<<8 | uint64(b)
		}
		return v, nil
	default:
		return new(uint256.Int).SetBytes(low), nil
	}
}

// readOffset reads a head word pointing into a buffer of [size] bytes.
func readOffset(word []byte, size int) (int, error) {
	offset, ok := wordToInt(word)
	if !ok || offset%WordSize != 0 || offset > size-WordSize {
		return 0, fmt.Errorf("%w: offset exceeds %d bytes", ErrInvalidOffset, size)
	}
	return offset, nil
}

// readLength reads the length word at the start of a dynamic value.
func readLength(data []byte) (int, error) {
	if len(data) < WordSize {
		return 0, fmt.Errorf("%w: missing length word", ErrInvalidLength)
	}
	length, ok := wordToInt(data[:WordSize])
	if !ok {
		return 0, fmt.Errorf("%w: length does not fit", ErrInvalidLength)
	}
	return length, nil
}

func wordToInt(word []byte) (int, bool) {
	if !isZero(word[:WordSize-8]) {
		return 0, false
	}
	var v uint64
	for _, b := range word[WordSize-8 : WordSize] {
		v = v<<8 | uint64(b)
	}
	if v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

func isZero(b []byte) bool {
	for _, x := range b {
		if x != 0 {
			return false
		}
	}
	return true
}
