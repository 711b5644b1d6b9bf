package abi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Decode converts one raw encoded value into a typed value according to the declared type of p.
//
// Integers decode to *big.Int, integer arrays to []*big.Int, bool to bool, bytes to []byte,
// bytes[] to [][]byte and tuples to map[string]any. Address, address[] and cell values are
// returned unchanged.
func Decode(raw any, p Param) (any, error) {
	return decodeParam(raw, p, p.Name)
}

func decodeParam(raw any, p Param, path string) (any, error) {
	t, err := ParseType(p)
	if err != nil {
		return nil, err
	}

	return decodeValue(raw, t, path)
}

func decodeValue(raw any, t Type, path string) (any, error) {
	switch t.Kind {
	case KindUint, KindInt:
		if t.Array {
			return decodeArray(raw, path, ParseBigInt)
		}
		n, err := ParseBigInt(raw)
		if err != nil {
			return nil, mismatch(path, t, err)
		}

		return n, nil
	case KindBool:
		return decodeBool(raw), nil
	case KindBytes:
		if t.Array {
			return decodeArray(raw, path, decodeBytes)
		}
		b, err := decodeBytes(raw)
		if err != nil {
			return nil, mismatch(path, t, err)
		}

		return b, nil
	case KindAddress, KindCell:
		return raw, nil
	case KindTuple:
		fields, ok := raw.(map[string]any)
		if !ok {
			return nil, mismatch(path, t, fmt.Errorf("expected object, got %T", raw))
		}

		return decodeTuple(fields, t.Components, path)
	case KindInvalid:
	}

	return nil, fmt.Errorf("%w: %w: %s at %q", ErrSchemaMismatch, ErrUnknownType, t, path)
}

// decodeTuple decodes every declared component from fields. A declared component missing from
// fields is a schema mismatch.
func decodeTuple(fields map[string]any, components []Param, path string) (map[string]any, error) {
	out := make(map[string]any, len(components))
	for _, c := range components {
		fieldPath := c.Name
		if path != "" {
			fieldPath = path + "." + c.Name
		}

		raw, ok := fields[c.Name]
		if !ok {
			return nil, fmt.Errorf("%w: field %q is missing from raw value", ErrSchemaMismatch, fieldPath)
		}

		v, err := decodeParam(raw, c, fieldPath)
		if err != nil {
			return nil, err
		}
		out[c.Name] = v
	}

	return out, nil
}

func decodeArray[T any](raw any, path string, elem func(any) (T, error)) ([]T, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		return nil, fmt.Errorf("%w: %q: expected array, got %T", ErrSchemaMismatch, path, raw)
	}

	out := make([]T, len(items))
	for i, item := range items {
		v, err := elem(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %q[%d]: %w", ErrSchemaMismatch, path, i, err)
		}
		out[i] = v
	}

	return out, nil
}

// ParseBigInt parses a raw numeric value without precision loss. It is the single integer parsing
// rule shared by scalars and arrays: strings carry an optional sign and are hexadecimal when
// prefixed with 0x, decimal otherwise. JSON numbers are accepted only when integral.
func ParseBigInt(raw any) (*big.Int, error) {
	switch v := raw.(type) {
	case *big.Int:
		if v == nil {
			return nil, errors.New("nil integer")
		}

		return new(big.Int).Set(v), nil
	case string:
		return parseIntString(v)
	case json.Number:
		return parseIntString(v.String())
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	}

	return nil, fmt.Errorf("cannot parse %T as integer", raw)
}

func parseIntString(s string) (*big.Int, error) {
	digits := strings.TrimSpace(s)

	neg := false
	switch {
	case strings.HasPrefix(digits, "-"):
		neg = true
		digits = digits[1:]
	case strings.HasPrefix(digits, "+"):
		digits = digits[1:]
	}

	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}

	if digits == "" || digits[0] == '-' || digits[0] == '+' {
		return nil, fmt.Errorf("invalid integer %q", s)
	}

	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if neg {
		n.Neg(n)
	}

	return n, nil
}

func floatToInt(f float64) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, fmt.Errorf("non-integral number %v", f)
	}
	n, _ := big.NewFloat(f).Int(nil)

	return n, nil
}

// decodeBool coerces raw to a boolean. Numbers are true when non-zero, strings are read as a
// boolean or a number when they parse as one and are otherwise true when non-empty. So "false",
// "0" and "0x0" decode to false even though they are non-empty strings.
func decodeBool(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return false
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		if n, err := parseIntString(s); err == nil {
			return n.Sign() != 0
		}

		return true
	}

	if n, err := ParseBigInt(raw); err == nil {
		return n.Sign() != 0
	}

	return true
}

func decodeBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		out := make([]byte, len(v))
		copy(out, v)

		return out, nil
	case string:
		s := strings.TrimPrefix(strings.TrimPrefix(v, "0x"), "0X")
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %w", v, err)
		}

		return b, nil
	}

	return nil, fmt.Errorf("cannot decode %T as bytes", raw)
}

func mismatch(path string, t Type, err error) error {
	return fmt.Errorf("%w: %q as %s: %w", ErrSchemaMismatch, path, t, err)
}
