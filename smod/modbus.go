package smod

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/NubeIO/module-core-modbus-master/utils"
	"github.com/grid-x/modbus"
	log "github.com/sirupsen/logrus"
)

type Transport string

const (
	TCP                 Transport = "tcp"
	RTUOverTCPBuffered  Transport = "rtu-over-tcp-buffered"
	RTUOverTCPTelnet    Transport = "rtu-over-tcp-telnet"
	DefaultTimeout                = time.Second
	FunctionReadCoils             = 1
	FunctionReadDiscrete          = 2
	FunctionReadHolding           = 3
	FunctionReadInput             = 4
	FunctionWriteCoil             = 5
	FunctionWriteRegister         = 6
	FunctionWriteCoils            = 15
	FunctionWriteRegisters        = 16
)

var (
	ErrUnsupportedTransport    = errors.New("unsupported transport")
	ErrUnsupportedFunctionCode = errors.New("unsupported function code")
)

// ParseTransport accepts the canonical names plus the short aliases used in channel catalogs.
func ParseTransport(s string) (Transport, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "", utils.InEqualIgnoreCase(s, string(TCP)):
		return TCP, nil
	case utils.InEqualIgnoreCase(s, string(RTUOverTCPBuffered), "rtutcp"):
		return RTUOverTCPBuffered, nil
	case utils.InEqualIgnoreCase(s, string(RTUOverTCPTelnet), "rtuOverTcp", "telnet"):
		return RTUOverTCPTelnet, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedTransport, s)
}

// Client is one open connection to a node. Unit id is switched per request.
type Client interface {
	SetUnitID(id byte)
	Read(fc byte, addr, qty uint16) ([]byte, error)
	Write(fc byte, addr, qty uint16, payload []byte) ([]byte, error)
	Close() error
}

type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

type ModbusClient struct {
	Client    modbus.Client
	Transport Transport
	Address   string
	handler   handler
	setUnit   func(byte)
}

// Dial connects to host:port with the given transport.
func Dial(host string, port int, transport Transport, timeout time.Duration) (*ModbusClient, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	address := net.JoinHostPort(host, strconv.Itoa(port))
	mc := &ModbusClient{Transport: transport, Address: address}
	switch transport {
	case TCP:
		h := modbus.NewTCPClientHandler(address)
		h.Timeout = timeout
		mc.handler = h
		mc.setUnit = func(id byte) { h.SlaveID = id }
	case RTUOverTCPBuffered:
		h := modbus.NewRTUOverTCPClientHandler(address)
		h.Timeout = timeout
		mc.handler = h
		mc.setUnit = func(id byte) { h.SlaveID = id }
	case RTUOverTCPTelnet:
		h := NewTelnetClientHandler(address)
		h.Timeout = timeout
		mc.handler = h
		mc.setUnit = func(id byte) { h.SlaveID = id }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTransport, transport)
	}
	if err := mc.handler.Connect(); err != nil {
		log.Errorf("Modbus Polling: [failed to connect %s %s: %v]", transport, address, err)
		return nil, err
	}
	mc.Client = modbus.NewClient(mc.handler)
	return mc, nil
}

func (mc *ModbusClient) SetUnitID(id byte) {
	mc.setUnit(id)
}

// Read issues function 1, 2, 3 or 4 and returns the response data bytes.
func (mc *ModbusClient) Read(fc byte, addr, qty uint16) (raw []byte, err error) {
	switch fc {
	case FunctionReadCoils:
		raw, err = mc.Client.ReadCoils(addr, qty)
	case FunctionReadDiscrete:
		raw, err = mc.Client.ReadDiscreteInputs(addr, qty)
	case FunctionReadHolding:
		raw, err = mc.Client.ReadHoldingRegisters(addr, qty)
	case FunctionReadInput:
		raw, err = mc.Client.ReadInputRegisters(addr, qty)
	default:
		return nil, fmt.Errorf("%w: read %d", ErrUnsupportedFunctionCode, fc)
	}
	if err != nil {
		log.Errorf("Modbus Polling: [failed to read fc:%d addr:%d quantity:%d: %v]", fc, addr, qty, err)
	}
	return raw, err
}

// Write issues function 5, 6, 15 or 16. For 5 and 6 payload holds the 2-byte value.
func (mc *ModbusClient) Write(fc byte, addr, qty uint16, payload []byte) (raw []byte, err error) {
	switch fc {
	case FunctionWriteCoil, FunctionWriteRegister:
		if len(payload) < 2 {
			return nil, fmt.Errorf("%w: write payload %d bytes", ErrShortBuffer, len(payload))
		}
		value := binary.BigEndian.Uint16(payload)
		if fc == FunctionWriteCoil {
			raw, err = mc.Client.WriteSingleCoil(addr, value)
		} else {
			raw, err = mc.Client.WriteSingleRegister(addr, value)
			// some devices echo a different value, the write itself went through
			if err != nil && strings.Contains(err.Error(), "modbus: response value") {
				return raw, nil
			}
		}
	case FunctionWriteCoils:
		raw, err = mc.Client.WriteMultipleCoils(addr, qty, payload)
	case FunctionWriteRegisters:
		raw, err = mc.Client.WriteMultipleRegisters(addr, qty, payload)
	default:
		return nil, fmt.Errorf("%w: write %d", ErrUnsupportedFunctionCode, fc)
	}
	if err != nil {
		log.Errorf("Modbus Polling: [failed to write fc:%d addr:%d: %v]", fc, addr, err)
	}
	return raw, err
}

func (mc *ModbusClient) Close() error {
	if mc == nil || mc.handler == nil {
		return nil
	}
	return mc.handler.Close()
}
