package smod

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

var allOrders = ByteOrders{BO8: "be", BO16: "be", BO32: "be", BO64: "be"}

func TestResolveVarType(t *testing.T) {
	orders := ByteOrders{BO8: "le", BO16: "sb", BO32: "sw", BO64: "le"}
	cases := map[string]VarType{
		"bool":    {Kind: Bool, Order: BigEndian},
		"int8":    {Kind: Int8, Order: LittleEndian},
		"uint8":   {Kind: Uint8, Order: LittleEndian},
		"int16":   {Kind: Int16, Order: ByteSwap},
		"uint32":  {Kind: Uint32, Order: WordSwap},
		"float":   {Kind: Float, Order: WordSwap},
		"double":  {Kind: Double, Order: LittleEndian},
		"int64":   {Kind: Int64, Order: LittleEndian},
		"floatbe": {Kind: Float, Order: BigEndian},
		"INT16LE": {Kind: Int16, Order: LittleEndian},
	}
	for name, want := range cases {
		got, err := ResolveVarType(name, orders)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
	}
	if _, err := ResolveVarType("string", orders); !errors.Is(err, ErrUnsupportedVarType) {
		t.Fatalf("expected ErrUnsupportedVarType, got %v", err)
	}
	if _, err := ResolveVarType("int16", ByteOrders{BO16: "xx"}); !errors.Is(err, ErrUnsupportedByteOrder) {
		t.Fatalf("expected ErrUnsupportedByteOrder, got %v", err)
	}
}

func TestDecodeInt16ByteOrder(t *testing.T) {
	raw := []byte{0x01, 0x00}
	be, _ := DecodeValue(raw, VarType{Kind: Int16, Order: BigEndian})
	le, _ := DecodeValue(raw, VarType{Kind: Int16, Order: LittleEndian})
	if be != 256 || le != 1 {
		t.Fatalf("got be=%v le=%v", be, le)
	}
	neg, _ := DecodeValue([]byte{0xFF, 0xFE}, VarType{Kind: Int16, Order: BigEndian})
	if neg != -2 {
		t.Fatalf("got %v, want -2", neg)
	}
}

func TestDecodeFloatOrders(t *testing.T) {
	// 1.5 = 0x3FC00000
	cases := []struct {
		order ByteOrder
		raw   []byte
	}{
		{BigEndian, []byte{0x3F, 0xC0, 0x00, 0x00}},
		{LittleEndian, []byte{0x00, 0x00, 0xC0, 0x3F}},
		{WordSwap, []byte{0x00, 0x00, 0x3F, 0xC0}},
		{ByteSwap, []byte{0xC0, 0x3F, 0x00, 0x00}},
	}
	for _, c := range cases {
		v, err := DecodeValue(c.raw, VarType{Kind: Float, Order: c.order})
		if err != nil || v != 1.5 {
			t.Fatalf("%s: got %v err=%v", c.order, v, err)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := map[Kind]float64{
		Int8:   -5,
		Uint8:  200,
		Int16:  -1234,
		Uint16: 54321,
		Int32:  -123456,
		Uint32: 3000000000,
		Float:  12.5,
		Int64:  -9876543210,
		Uint64: 9876543210,
		Double: 3.14159,
	}
	for kind, v := range values {
		for _, order := range []ByteOrder{BigEndian, LittleEndian, WordSwap, ByteSwap} {
			vt := VarType{Kind: kind, Order: order}
			raw, err := EncodeValue(v, vt, nil)
			if err != nil {
				t.Fatalf("%s: encode: %v", vt, err)
			}
			if len(raw) != vt.Bytes() {
				t.Fatalf("%s: got %d bytes, want %d", vt, len(raw), vt.Bytes())
			}
			got, err := DecodeValue(raw, vt)
			if err != nil {
				t.Fatalf("%s: decode: %v", vt, err)
			}
			if math.Abs(got-v) > 1e-9 {
				t.Fatalf("%s: got %v, want %v", vt, got, v)
			}
		}
	}
}

func TestEncodeEightBitPlacement(t *testing.T) {
	be, _ := EncodeValue(7, VarType{Kind: Uint8, Order: BigEndian}, nil)
	le, _ := EncodeValue(7, VarType{Kind: Uint8, Order: LittleEndian}, nil)
	if !bytes.Equal(be, []byte{7, 0}) || !bytes.Equal(le, []byte{0, 7}) {
		t.Fatalf("got be=%v le=%v", be, le)
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	if _, err := EncodeValue(70000, VarType{Kind: Uint16, Order: BigEndian}, nil); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("expected ErrValueOutOfRange, got %v", err)
	}
	if _, err := EncodeValue(-1, VarType{Kind: Uint32, Order: BigEndian}, nil); !errors.Is(err, ErrValueOutOfRange) {
		t.Fatalf("expected ErrValueOutOfRange, got %v", err)
	}
	for _, k := range []Kind{Int16, Float, Int64, Uint64} {
		if out, err := EncodeValue(math.NaN(), VarType{Kind: k, Order: BigEndian}, nil); !errors.Is(err, ErrValueOutOfRange) {
			t.Fatalf("%s: expected ErrValueOutOfRange for NaN, got %x %v", k, out, err)
		}
	}
}

func TestScale(t *testing.T) {
	s := &Scale{RawLow: 0, RawHigh: 4000, EngLow: 0, EngHigh: 100}
	if got := s.ToEng(2000); got != 50 {
		t.Fatalf("ToEng got %v", got)
	}
	if got := s.ToRaw(25); got != 1000 {
		t.Fatalf("ToRaw got %v", got)
	}
	flat := &Scale{RawLow: 5, RawHigh: 5, EngLow: 0, EngHigh: 100}
	if got := flat.ToEng(42); got != 42 {
		t.Fatalf("degenerate scale should pass through, got %v", got)
	}
	var none *Scale
	if got := none.ToEng(3); got != 3 {
		t.Fatalf("nil scale should pass through, got %v", got)
	}
	raw, err := EncodeValue(25, VarType{Kind: Uint16, Order: BigEndian}, s)
	if err != nil || !bytes.Equal(raw, []byte{0x03, 0xE8}) {
		t.Fatalf("got %v err=%v", raw, err)
	}
}

func TestSetBitRoundTrip(t *testing.T) {
	regs := []byte{0x00, 0x00}
	on, err := SetBit(regs, 3, true)
	if err != nil || !bytes.Equal(on, []byte{0x00, 0x08}) {
		t.Fatalf("got %v err=%v", on, err)
	}
	off, _ := SetBit(on, 3, false)
	if !bytes.Equal(off, []byte{0x00, 0x00}) {
		t.Fatalf("got %v", off)
	}
	high, _ := SetBit(regs, 9, true)
	if !bytes.Equal(high, []byte{0x02, 0x00}) {
		t.Fatalf("got %v", high)
	}
	if !bytes.Equal(regs, []byte{0x00, 0x00}) {
		t.Fatal("SetBit must not modify its input")
	}
	if _, err := SetBit(regs, 16, true); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

func TestDecodeRefs(t *testing.T) {
	// three holding registers: 0x0102, 0x0008, 0xFFFF
	buf := []byte{0x01, 0x02, 0x00, 0x08, 0xFF, 0xFF}
	refs := []Ref{
		{ID: "a", Offset: 0, VarType: VarType{Kind: Uint16, Order: BigEndian}},
		{ID: "b", Offset: 2, VarType: VarType{Kind: Uint16, Order: BigEndian}, Bit: true, BitOffset: 3},
		{ID: "c", Offset: 4, VarType: VarType{Kind: Int16, Order: BigEndian}},
		{ID: "d", Offset: 4, VarType: VarType{Kind: Int32, Order: BigEndian}},
	}
	got := Decode(buf, refs)
	if got[0].Value != 258 || got[1].Value != 1 || got[2].Value != -1 {
		t.Fatalf("got %+v", got)
	}
	if !errors.Is(got[3].Err, ErrShortBuffer) {
		t.Fatalf("expected short buffer for d, got %v", got[3].Err)
	}
}

func TestCoils(t *testing.T) {
	buf := []byte{0x05, 0x01} // coils 0, 2 and 8 on
	want := map[int]bool{0: true, 1: false, 2: true, 7: false, 8: true}
	for idx, w := range want {
		got, err := CoilBit(buf, idx)
		if err != nil || got != w {
			t.Fatalf("coil %d: got %v err=%v", idx, got, err)
		}
	}
	if _, err := CoilBit(buf, 16); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
	if !bytes.Equal(CoilPayload(true), []byte{0xFF, 0x00}) || !bytes.Equal(CoilPayload(false), []byte{0, 0}) {
		t.Fatal("unexpected coil payload")
	}
}

func TestParseTransport(t *testing.T) {
	cases := map[string]Transport{
		"":                      TCP,
		"TCP":                   TCP,
		"rtutcp":                RTUOverTCPBuffered,
		"rtu-over-tcp-buffered": RTUOverTCPBuffered,
		"rtuOverTcp":            RTUOverTCPTelnet,
		"RTUOVERTCP":            RTUOverTCPTelnet,
	}
	for in, want := range cases {
		got, err := ParseTransport(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v err=%v", in, got, err)
		}
	}
	if _, err := ParseTransport("udp"); !errors.Is(err, ErrUnsupportedTransport) {
		t.Fatalf("expected ErrUnsupportedTransport, got %v", err)
	}
}
