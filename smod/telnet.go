package smod

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/grid-x/modbus"
)

const (
	iac  = 0xFF
	sb   = 0xFA
	se   = 0xF0
	will = 0xFB
	dont = 0xFE
)

// TelnetClientHandler speaks RTU framing through a telnet-mode serial server (RFC 2217 style ports).
// Frames are escaped on the way out and option negotiation is stripped on the way in.
type TelnetClientHandler struct {
	*modbus.RTUOverTCPClientHandler

	mu   sync.Mutex
	conn net.Conn
}

func NewTelnetClientHandler(address string) *TelnetClientHandler {
	return &TelnetClientHandler{RTUOverTCPClientHandler: modbus.NewRTUOverTCPClientHandler(address)}
}

func (h *TelnetClientHandler) Connect() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connect()
}

func (h *TelnetClientHandler) connect() error {
	if h.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", h.Address, h.Timeout)
	if err != nil {
		return err
	}
	h.conn = conn
	return nil
}

func (h *TelnetClientHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	return err
}

func (h *TelnetClientHandler) Send(aduRequest []byte) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.connect(); err != nil {
		return nil, err
	}
	if err := h.conn.SetDeadline(time.Now().Add(h.Timeout)); err != nil {
		return nil, err
	}
	if _, err := h.conn.Write(telnetEscape(aduRequest)); err != nil {
		h.drop()
		return nil, err
	}
	var (
		f    telnetFilter
		resp []byte
		buf  = make([]byte, 256)
	)
	for {
		n, err := h.conn.Read(buf)
		if n > 0 {
			resp = f.feed(resp, buf[:n])
			want, lerr := rtuResponseLength(resp)
			if lerr != nil {
				h.drop()
				return nil, lerr
			}
			if want > 0 && len(resp) >= want {
				return resp[:want], nil
			}
		}
		if err != nil {
			h.drop()
			return nil, err
		}
	}
}

func (h *TelnetClientHandler) drop() {
	if h.conn != nil {
		_ = h.conn.Close()
		h.conn = nil
	}
}

func telnetEscape(b []byte) []byte {
	out := make([]byte, 0, len(b)+4)
	for _, c := range b {
		out = append(out, c)
		if c == iac {
			out = append(out, iac)
		}
	}
	return out
}

type telnetState int

const (
	stData telnetState = iota
	stIAC
	stOption
	stSub
	stSubIAC
)

// telnetFilter removes telnet commands from a byte stream; state carries over between reads.
type telnetFilter struct {
	state telnetState
}

func (f *telnetFilter) feed(dst, in []byte) []byte {
	for _, c := range in {
		switch f.state {
		case stData:
			if c == iac {
				f.state = stIAC
				continue
			}
			dst = append(dst, c)
		case stIAC:
			switch {
			case c == iac:
				dst = append(dst, iac)
				f.state = stData
			case c >= will && c <= dont:
				f.state = stOption
			case c == sb:
				f.state = stSub
			default:
				f.state = stData
			}
		case stOption:
			f.state = stData
		case stSub:
			if c == iac {
				f.state = stSubIAC
			}
		case stSubIAC:
			if c == se {
				f.state = stData
			} else {
				f.state = stSub
			}
		}
	}
	return dst
}

// rtuResponseLength returns the full frame length once enough of the header is known, 0 otherwise.
func rtuResponseLength(resp []byte) (int, error) {
	if len(resp) < 2 {
		return 0, nil
	}
	fc := resp[1]
	switch {
	case fc&0x80 != 0:
		return 5, nil
	case fc >= FunctionReadCoils && fc <= FunctionReadInput:
		if len(resp) < 3 {
			return 0, nil
		}
		return 3 + int(resp[2]) + 2, nil
	case fc == FunctionWriteCoil, fc == FunctionWriteRegister, fc == FunctionWriteCoils, fc == FunctionWriteRegisters:
		return 8, nil
	}
	return 0, fmt.Errorf("%w: response %d", ErrUnsupportedFunctionCode, fc)
}
