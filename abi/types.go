package abi

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the closed set of type variants the decoder understands.
type Kind int

const (
	KindInvalid Kind = iota
	KindUint
	KindInt
	KindBool
	KindBytes
	KindAddress
	KindCell
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindAddress:
		return "address"
	case KindCell:
		return "cell"
	case KindTuple:
		return "tuple"
	case KindInvalid:
		return "invalid"
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Type is a parsed parameter type: a variant tag with its payload.
type Type struct {
	Kind Kind
	// Bits is the width of integer kinds.
	Bits int
	// Array is set for the T[] form.
	Array bool
	// Components holds the named fields of a tuple.
	Components []Param
}

func (t Type) String() string {
	s := t.Kind.String()
	if t.Kind == KindInt || t.Kind == KindUint {
		s += strconv.Itoa(t.Bits)
	}
	if t.Array {
		s += "[]"
	}

	return s
}

// ParseType parses the declared type of p.
//
// Supported: int<N>, uint<N> (N in 1..256) and their arrays, bool, bytes, bytes[], address,
// address[], cell and tuple.
func ParseType(p Param) (Type, error) {
	base, array := strings.CutSuffix(p.Type, "[]")

	var t Type
	switch {
	case base == "bool":
		t = Type{Kind: KindBool}
	case base == "bytes":
		t = Type{Kind: KindBytes}
	case base == "address":
		t = Type{Kind: KindAddress}
	case base == "cell":
		t = Type{Kind: KindCell}
	case base == "tuple":
		t = Type{Kind: KindTuple, Components: p.Components}
	case strings.HasPrefix(base, "uint"):
		bits, ok := parseBits(base[len("uint"):])
		if !ok {
			return Type{}, unknownType(p)
		}
		t = Type{Kind: KindUint, Bits: bits}
	case strings.HasPrefix(base, "int"):
		bits, ok := parseBits(base[len("int"):])
		if !ok {
			return Type{}, unknownType(p)
		}
		t = Type{Kind: KindInt, Bits: bits}
	default:
		return Type{}, unknownType(p)
	}

	if array {
		switch t.Kind {
		case KindUint, KindInt, KindBytes, KindAddress:
			t.Array = true
		case KindInvalid, KindBool, KindCell, KindTuple:
			return Type{}, unknownType(p)
		}
	}

	return t, nil
}

func parseBits(s string) (int, bool) {
	bits, err := strconv.Atoi(s)
	if err != nil || bits < 1 || bits > 256 {
		return 0, false
	}

	return bits, true
}

func unknownType(p Param) error {
	return fmt.Errorf("%w: %w: %q declared for %q", ErrSchemaMismatch, ErrUnknownType, p.Type, p.Name)
}
