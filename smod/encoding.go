package smod

import (
	"errors"
	"fmt"
	"strings"
)

type ByteOrder string
type Kind string

const (
	// BigEndian is network order (ABCD).
	BigEndian ByteOrder = "be"
	// LittleEndian reverses every byte (DCBA).
	LittleEndian ByteOrder = "le"
	// WordSwap keeps bytes inside a register but reverses the register order (CDAB).
	WordSwap ByteOrder = "sw"
	// ByteSwap swaps the bytes inside every register (BADC).
	ByteSwap ByteOrder = "sb"
)

const (
	Bool   Kind = "bool"
	Int8   Kind = "int8"
	Uint8  Kind = "uint8"
	Int16  Kind = "int16"
	Uint16 Kind = "uint16"
	Int32  Kind = "int32"
	Uint32 Kind = "uint32"
	Float  Kind = "float"
	Int64  Kind = "int64"
	Uint64 Kind = "uint64"
	Double Kind = "double"
)

var (
	ErrUnsupportedVarType   = errors.New("unsupported var type")
	ErrUnsupportedByteOrder = errors.New("unsupported byte order")
)

var kinds = map[Kind]int{
	Bool:   1,
	Int8:   1,
	Uint8:  1,
	Int16:  1,
	Uint16: 1,
	Int32:  2,
	Uint32: 2,
	Float:  2,
	Int64:  4,
	Uint64: 4,
	Double: 4,
}

// ByteOrders holds the byte order applied to each value width.
type ByteOrders struct {
	BO8  string
	BO16 string
	BO32 string
	BO64 string
}

// VarType is a value type with its byte order already resolved.
type VarType struct {
	Kind  Kind
	Order ByteOrder
}

func (v VarType) String() string {
	if v.Kind == Bool {
		return string(v.Kind)
	}
	return string(v.Kind) + string(v.Order)
}

// Registers is the number of 16-bit registers the value occupies.
func (v VarType) Registers() int {
	return kinds[v.Kind]
}

func (v VarType) Bytes() int {
	return kinds[v.Kind] * 2
}

func (v VarType) IsBool() bool {
	return v.Kind == Bool
}

func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "be", "abcd":
		return BigEndian, nil
	case "le", "dcba":
		return LittleEndian, nil
	case "sw", "cdab":
		return WordSwap, nil
	case "sb", "badc":
		return ByteSwap, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedByteOrder, s)
}

// ResolveVarType picks the byte order for a var type name from its width:
// int8/uint8 use BO8, names ending in 16 use BO16, names ending in 32 and float use BO32,
// names ending in 64 and double use BO64. A name that already carries an order suffix keeps it.
func ResolveVarType(name string, orders ByteOrders) (VarType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return VarType{}, fmt.Errorf("%w: empty", ErrUnsupportedVarType)
	}
	if _, ok := kinds[Kind(name)]; !ok {
		return parseSuffixed(name)
	}
	kind := Kind(name)
	var order string
	switch {
	case kind == Bool:
		return VarType{Kind: Bool, Order: BigEndian}, nil
	case kind == Int8 || kind == Uint8:
		order = orders.BO8
	case strings.HasSuffix(name, "16"):
		order = orders.BO16
	case strings.HasSuffix(name, "32") || kind == Float:
		order = orders.BO32
	case strings.HasSuffix(name, "64") || kind == Double:
		order = orders.BO64
	}
	bo, err := ParseByteOrder(order)
	if err != nil {
		return VarType{}, err
	}
	return VarType{Kind: kind, Order: bo}, nil
}

func parseSuffixed(name string) (VarType, error) {
	if len(name) > 2 {
		kind := Kind(name[:len(name)-2])
		if _, ok := kinds[kind]; ok && kind != Bool {
			if bo, err := ParseByteOrder(name[len(name)-2:]); err == nil {
				return VarType{Kind: kind, Order: bo}, nil
			}
		}
	}
	return VarType{}, fmt.Errorf("%w: %q", ErrUnsupportedVarType, name)
}

// reorder converts between the wire layout and big-endian. Every permutation is its own inverse,
// so the same call serves decode and encode.
func reorder(b []byte, order ByteOrder) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	switch order {
	case LittleEndian:
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	case WordSwap:
		words := len(out) / 2
		for i, j := 0, words-1; i < j; i, j = i+1, j-1 {
			out[2*i], out[2*j] = out[2*j], out[2*i]
			out[2*i+1], out[2*j+1] = out[2*j+1], out[2*i+1]
		}
	case ByteSwap:
		for i := 0; i+1 < len(out); i += 2 {
			out[i], out[i+1] = out[i+1], out[i]
		}
	}
	return out
}
