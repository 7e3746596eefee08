package smod

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/grid-x/modbus"
)

func TestTelnetEscape(t *testing.T) {
	got := telnetEscape([]byte{0x01, 0xFF, 0x02})
	if !bytes.Equal(got, []byte{0x01, 0xFF, 0xFF, 0x02}) {
		t.Fatalf("got %x", got)
	}
}

func TestTelnetFilter(t *testing.T) {
	var f telnetFilter
	// negotiation, data with escaped 0xFF, subnegotiation, more data
	in := []byte{iac, will, 0x01, 0x11, iac, iac, 0x22, iac, sb, 0x2C, 0x01, iac, se, 0x33}
	got := f.feed(nil, in)
	if !bytes.Equal(got, []byte{0x11, 0xFF, 0x22, 0x33}) {
		t.Fatalf("got %x", got)
	}
}

func TestTelnetFilterSplitAcrossReads(t *testing.T) {
	var f telnetFilter
	out := f.feed(nil, []byte{0x01, iac})
	out = f.feed(out, []byte{iac, 0x02})
	if !bytes.Equal(out, []byte{0x01, 0xFF, 0x02}) {
		t.Fatalf("got %x", out)
	}
}

func TestRTUResponseLength(t *testing.T) {
	cases := []struct {
		resp []byte
		want int
	}{
		{[]byte{0x01}, 0},
		{[]byte{0x01, 0x03}, 0},
		{[]byte{0x01, 0x03, 0x04}, 9},
		{[]byte{0x01, 0x83}, 5},
		{[]byte{0x01, 0x06}, 8},
		{[]byte{0x01, 0x10}, 8},
	}
	for _, c := range cases {
		got, err := rtuResponseLength(c.resp)
		if err != nil || got != c.want {
			t.Fatalf("%x: got %d err=%v, want %d", c.resp, got, err, c.want)
		}
	}
	if _, err := rtuResponseLength([]byte{0x01, 0x2B}); !errors.Is(err, ErrUnsupportedFunctionCode) {
		t.Fatalf("expected ErrUnsupportedFunctionCode, got %v", err)
	}
}

func TestIsNetworkError(t *testing.T) {
	if !IsNetworkError(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)) {
		t.Fatal("ECONNREFUSED should be a network error")
	}
	if !IsNetworkError(&net.OpError{Op: "read", Err: errors.New("boom")}) {
		t.Fatal("OpError should be a network error")
	}
	if IsNetworkError(&modbus.Error{FunctionCode: 0x83, ExceptionCode: 2}) {
		t.Fatal("exception response is not a network error")
	}
	if IsNetworkError(errors.New("plain")) || IsNetworkError(nil) {
		t.Fatal("plain errors are not network errors")
	}
	if code, ok := ExceptionCode(fmt.Errorf("wrap: %w", &modbus.Error{ExceptionCode: 2})); !ok || code != 2 {
		t.Fatalf("got %d %v", code, ok)
	}
}
