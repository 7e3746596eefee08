package pkg

import (
	"encoding/binary"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/smod"
)

type call struct {
	fc      byte
	addr    uint16
	qty     uint16
	payload []byte
}

type fakeClient struct {
	regs     map[uint16]uint16
	coils    map[uint16]bool
	readErr  error
	writeErr error
	short    bool
	reads    []call
	writes   []call
	closed   bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{regs: map[uint16]uint16{}, coils: map[uint16]bool{}}
}

func (c *fakeClient) SetUnitID(byte) {}

func (c *fakeClient) Read(fc byte, addr, qty uint16) ([]byte, error) {
	c.reads = append(c.reads, call{fc: fc, addr: addr, qty: qty})
	if c.readErr != nil {
		return nil, c.readErr
	}
	if fc == smod.FunctionReadCoils || fc == smod.FunctionReadDiscrete {
		out := make([]byte, (int(qty)+7)/8)
		for i := 0; i < int(qty); i++ {
			if c.coils[addr+uint16(i)] {
				out[i/8] |= 1 << uint(i%8)
			}
		}
		return out, nil
	}
	out := make([]byte, 2*int(qty))
	for i := 0; i < int(qty); i++ {
		binary.BigEndian.PutUint16(out[2*i:], c.regs[addr+uint16(i)])
	}
	if c.short {
		return out[:len(out)-1], nil
	}
	return out, nil
}

func (c *fakeClient) Write(fc byte, addr, qty uint16, payload []byte) ([]byte, error) {
	c.writes = append(c.writes, call{fc: fc, addr: addr, qty: qty, payload: append([]byte(nil), payload...)})
	if c.writeErr != nil {
		return nil, c.writeErr
	}
	switch fc {
	case smod.FunctionWriteCoil:
		c.coils[addr] = payload[0] == 0xFF
	case smod.FunctionWriteCoils:
		for i := 0; i < int(qty); i++ {
			c.coils[addr+uint16(i)] = payload[i/8]&(1<<uint(i%8)) != 0
		}
	case smod.FunctionWriteRegister, smod.FunctionWriteRegisters:
		for i := 0; i < len(payload)/2; i++ {
			c.regs[addr+uint16(i)] = binary.BigEndian.Uint16(payload[2*i:])
		}
	}
	return payload, nil
}

func (c *fakeClient) Close() error {
	c.closed = true
	return nil
}

// fakeNetwork dials the clients it knows and refuses everything else.
type fakeNetwork struct {
	clients map[string]*fakeClient
	dials   []string
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{clients: map[string]*fakeClient{}}
}

func (n *fakeNetwork) add(key string) *fakeClient {
	c := newFakeClient()
	n.clients[key] = c
	return c
}

func (n *fakeNetwork) dial(node schema.Node, _ time.Duration) (smod.Client, error) {
	n.dials = append(n.dials, node.Key())
	if c, ok := n.clients[node.Key()]; ok {
		c.closed = false
		return c, nil
	}
	return nil, &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
}

type fakeHost struct {
	mu         sync.Mutex
	params     schema.Params
	channels   []schema.ChannelRecord
	updates    []schema.Update
	replies    []schema.Reply
	working    int
	workingErr error
}

func (h *fakeHost) Params() (schema.Params, error) {
	return h.params, nil
}

func (h *fakeHost) Channels() ([]schema.ChannelRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.channels, nil
}

func (h *fakeHost) SendData(updates []schema.Update) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updates = append(h.updates, updates...)
	return nil
}

func (h *fakeHost) SendResponse(reply schema.Reply) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replies = append(h.replies, reply)
	return nil
}

func (h *fakeHost) SendWorkingState() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.working++
	return h.workingErr
}

func (h *fakeHost) takeUpdates() []schema.Update {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.updates
	h.updates = nil
	return out
}

func (h *fakeHost) replyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.replies)
}

func record(id, host string, addr int, vartype string) schema.ChannelRecord {
	return schema.ChannelRecord{
		ID: id, NodeIP: host, NodePort: 502, NodeTransport: "tcp", UnitID: 1,
		Address: schema.Int(addr), VarType: vartype, R: true,
	}
}

func valuePtr(v float64) *float64 {
	return &v
}
