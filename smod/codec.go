package smod

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrShortBuffer     = errors.New("response buffer too short")
	ErrValueOutOfRange = errors.New("value out of range")
)

// Scale maps a raw device range onto an engineering range.
type Scale struct {
	RawLow  float64
	RawHigh float64
	EngLow  float64
	EngHigh float64
}

func (s *Scale) ToEng(raw float64) float64 {
	if s == nil || s.RawHigh == s.RawLow {
		return raw
	}
	return s.EngLow + (raw-s.RawLow)*(s.EngHigh-s.EngLow)/(s.RawHigh-s.RawLow)
}

func (s *Scale) ToRaw(eng float64) float64 {
	if s == nil || s.RawHigh == s.RawLow || s.EngHigh == s.EngLow {
		return eng
	}
	return s.RawLow + (eng-s.EngLow)*(s.RawHigh-s.RawLow)/(s.EngHigh-s.EngLow)
}

// Ref locates one channel value inside a read response.
// For coil reads Offset is the bit index, otherwise it is a byte offset.
type Ref struct {
	ID        string
	Offset    int
	VarType   VarType
	Coil      bool
	Bit       bool
	BitOffset int
	Scale     *Scale
}

type Value struct {
	ID    string
	Value float64
	Err   error
}

// Decode extracts every referenced value from buf. Failures are reported per value.
func Decode(buf []byte, refs []Ref) []Value {
	out := make([]Value, 0, len(refs))
	for _, ref := range refs {
		v, err := DecodeRef(buf, ref)
		out = append(out, Value{ID: ref.ID, Value: v, Err: err})
	}
	return out
}

func DecodeRef(buf []byte, ref Ref) (float64, error) {
	if ref.Coil {
		on, err := CoilBit(buf, ref.Offset)
		if err != nil {
			return 0, err
		}
		return boolToFloat(on), nil
	}
	n := ref.VarType.Bytes()
	if n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedVarType, ref.VarType.Kind)
	}
	if ref.Offset < 0 || ref.Offset+n > len(buf) {
		return 0, fmt.Errorf("%w: need %d bytes at %d, have %d", ErrShortBuffer, n, ref.Offset, len(buf))
	}
	raw := buf[ref.Offset : ref.Offset+n]
	if ref.Bit {
		on, err := GetBit(raw, ref.BitOffset)
		if err != nil {
			return 0, err
		}
		return boolToFloat(on), nil
	}
	v, err := DecodeValue(raw, ref.VarType)
	if err != nil {
		return 0, err
	}
	return ref.Scale.ToEng(v), nil
}

// DecodeValue interprets raw register bytes (exactly vt.Bytes() long) as vt.
func DecodeValue(raw []byte, vt VarType) (float64, error) {
	if len(raw) < vt.Bytes() {
		return 0, ErrShortBuffer
	}
	switch vt.Kind {
	case Bool:
		return boolToFloat(raw[0] != 0 || raw[1] != 0), nil
	case Int8:
		return float64(int8(byte8(raw, vt.Order))), nil
	case Uint8:
		return float64(byte8(raw, vt.Order)), nil
	}
	b := reorder(raw[:vt.Bytes()], vt.Order)
	switch vt.Kind {
	case Int16:
		return float64(int16(binary.BigEndian.Uint16(b))), nil
	case Uint16:
		return float64(binary.BigEndian.Uint16(b)), nil
	case Int32:
		return float64(int32(binary.BigEndian.Uint32(b))), nil
	case Uint32:
		return float64(binary.BigEndian.Uint32(b)), nil
	case Float:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
	case Int64:
		return float64(int64(binary.BigEndian.Uint64(b))), nil
	case Uint64:
		return float64(binary.BigEndian.Uint64(b)), nil
	case Double:
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedVarType, vt.Kind)
}

// EncodeValue is the inverse of DecodeValue: value (engineering units, scale applied in reverse)
// to register bytes in the wire byte order.
func EncodeValue(value float64, vt VarType, scale *Scale) ([]byte, error) {
	raw := scale.ToRaw(value)
	switch vt.Kind {
	case Bool:
		if raw != 0 {
			return []byte{0x00, 0x01}, nil
		}
		return []byte{0x00, 0x00}, nil
	case Float, Double:
	default:
		raw = math.Round(raw)
	}
	if err := checkRange(raw, vt.Kind); err != nil {
		return nil, err
	}
	b := make([]byte, vt.Bytes())
	switch vt.Kind {
	case Int8, Uint8:
		var v byte
		if vt.Kind == Int8 {
			v = byte(int8(raw))
		} else {
			v = byte(raw)
		}
		if vt.Order == LittleEndian || vt.Order == ByteSwap {
			b[1] = v
		} else {
			b[0] = v
		}
		return b, nil
	case Int16:
		binary.BigEndian.PutUint16(b, uint16(int16(raw)))
	case Uint16:
		binary.BigEndian.PutUint16(b, uint16(raw))
	case Int32:
		binary.BigEndian.PutUint32(b, uint32(int32(raw)))
	case Uint32:
		binary.BigEndian.PutUint32(b, uint32(raw))
	case Float:
		binary.BigEndian.PutUint32(b, math.Float32bits(float32(raw)))
	case Int64:
		binary.BigEndian.PutUint64(b, uint64(int64(raw)))
	case Uint64:
		binary.BigEndian.PutUint64(b, uint64(raw))
	case Double:
		binary.BigEndian.PutUint64(b, math.Float64bits(raw))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVarType, vt.Kind)
	}
	return reorder(b, vt.Order), nil
}

func checkRange(v float64, kind Kind) error {
	if math.IsNaN(v) && kind != Double && kind != Bool {
		return fmt.Errorf("%w: %v for %s", ErrValueOutOfRange, v, kind)
	}
	var lo, hi float64
	switch kind {
	case Int8:
		lo, hi = math.MinInt8, math.MaxInt8
	case Uint8:
		lo, hi = 0, math.MaxUint8
	case Int16:
		lo, hi = math.MinInt16, math.MaxInt16
	case Uint16:
		lo, hi = 0, math.MaxUint16
	case Int32:
		lo, hi = math.MinInt32, math.MaxInt32
	case Uint32:
		lo, hi = 0, math.MaxUint32
	case Float:
		lo, hi = -math.MaxFloat32, math.MaxFloat32
	case Int64:
		if v < -(1<<63) || v >= 1<<63 {
			return fmt.Errorf("%w: %v for %s", ErrValueOutOfRange, v, kind)
		}
		return nil
	case Uint64:
		if v < 0 || v >= 1<<64 {
			return fmt.Errorf("%w: %v for %s", ErrValueOutOfRange, v, kind)
		}
		return nil
	default:
		return nil
	}
	if v < lo || v > hi {
		return fmt.Errorf("%w: %v for %s", ErrValueOutOfRange, v, kind)
	}
	return nil
}

// bitIndex returns the byte holding a bit of a big-endian register block:
// bits 0-7 live in the second byte of a register, bits 8-15 in the first.
func bitIndex(offset int) (int, uint) {
	reg := offset / 16
	bit := offset % 16
	if bit < 8 {
		return reg*2 + 1, uint(bit)
	}
	return reg * 2, uint(bit - 8)
}

func GetBit(regs []byte, offset int) (bool, error) {
	idx, bit := bitIndex(offset)
	if offset < 0 || idx >= len(regs) {
		return false, fmt.Errorf("%w: bit %d of %d bytes", ErrShortBuffer, offset, len(regs))
	}
	return regs[idx]&(1<<bit) != 0, nil
}

// SetBit returns a copy of regs with one bit set or cleared. Used for read-modify-write.
func SetBit(regs []byte, offset int, on bool) ([]byte, error) {
	idx, bit := bitIndex(offset)
	if offset < 0 || idx >= len(regs) {
		return nil, fmt.Errorf("%w: bit %d of %d bytes", ErrShortBuffer, offset, len(regs))
	}
	out := make([]byte, len(regs))
	copy(out, regs)
	if on {
		out[idx] |= 1 << bit
	} else {
		out[idx] &^= 1 << bit
	}
	return out, nil
}

// CoilBit reads a coil/discrete input from a packed response, LSB of the first byte first.
func CoilBit(buf []byte, index int) (bool, error) {
	if index < 0 || index/8 >= len(buf) {
		return false, fmt.Errorf("%w: coil %d of %d bytes", ErrShortBuffer, index, len(buf))
	}
	return buf[index/8]&(1<<uint(index%8)) != 0, nil
}

// CoilPayload is the single coil write value: 0xFF00 for on, 0x0000 for off.
func CoilPayload(on bool) []byte {
	if on {
		return []byte{0xFF, 0x00}
	}
	return []byte{0x00, 0x00}
}

func byte8(raw []byte, order ByteOrder) byte {
	if order == LittleEndian || order == ByteSwap {
		return raw[1]
	}
	return raw[0]
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
