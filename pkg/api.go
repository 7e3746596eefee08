package pkg

import (
	"fmt"

	"github.com/NubeIO/module-core-modbus-master/pollqueue"
	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/smod"
	"go.bug.st/serial"
)

func (m *Module) handleCommand(cmd schema.Command) {
	m.modbusDebugMsg(fmt.Sprintf("command %s, items: %d", cmd.Command, len(cmd.Data)))
	switch cmd.Command {
	case schema.CommandRead:
		m.sendResponse(schema.NewReply(cmd, m.readItems(cmd.Data), true))
	case schema.CommandWrite:
		m.sendResponse(schema.NewReply(cmd, m.writeItems(cmd.Data), true))
	case schema.CommandReadOnReq:
		m.readOnRequest(cmd)
	case schema.CommandStats:
		m.sendResponse(schema.NewReply(cmd, m.statistics(), true))
	case schema.CommandListSerial:
		ports, err := serial.GetPortsList()
		if err != nil {
			m.replyError(cmd, err)
			return
		}
		m.sendResponse(schema.NewReply(cmd, ports, true))
	case schema.CommandSchema:
		m.sendResponse(schema.NewReply(cmd, schema.GetChannelSchema(), true))
	default:
		m.modbusErrorMsg("unknown command: ", cmd.Command)
		reply := schema.NewReply(cmd, nil, false)
		reply.Result = schema.ResultUnknownCommand
		m.sendResponse(reply)
	}
}

func (m *Module) replyError(cmd schema.Command, err error) {
	m.modbusErrorMsg(fmt.Sprintf("command %s: %v", cmd.Command, err))
	m.sendResponse(schema.NewReply(cmd, err.Error(), false))
}

// Statistics is the stats command payload: queue statistics plus channel counts per health status.
type Statistics struct {
	*pollqueue.PollQueueStatistics
	Channels map[string]int `json:"channels"`
}

func (m *Module) statistics() Statistics {
	channels := map[string]int{}
	for status, n := range m.health.Counts() {
		channels[status.String()] = n
	}
	return Statistics{PollQueueStatistics: m.pollManager.GetPollingQueueStatistics(), Channels: channels}
}

// readItems reads every item straight away. Offset is a register index into the read, or the bit index
// for coils and bit channels.
func (m *Module) readItems(items []schema.ChannelRecord) []schema.ReadResult {
	out := make([]schema.ReadResult, 0, len(items))
	for _, rec := range items {
		res := schema.ReadResult{ChannelRecord: rec}
		v, err := m.readItem(rec)
		if err != nil {
			m.logRequestError(err)
			res.Error = err.Error()
		} else {
			res.Value = &v
		}
		out = append(out, res)
	}
	return out
}

func (m *Module) readItem(rec schema.ChannelRecord) (float64, error) {
	rec.R = true
	ch, err := schema.Resolve(rec, m.params)
	if err != nil {
		return 0, err
	}
	var offset int
	switch {
	case ch.Bit:
	case ch.Coil():
		offset = ch.Offset
	default:
		offset = ch.Offset * 2
	}
	length := int(rec.Length)
	if length <= 0 {
		length = readLength(ch)
	}
	raw, err := m.request(ch.Node, ch.UnitID, func(c smod.Client) ([]byte, error) {
		return c.Read(ch.Read.FunctionCode, ch.Read.Address, uint16(length))
	})
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", ch.ID, err)
	}
	return smod.DecodeRef(raw, ch.Ref(offset))
}

// readLength covers the item's value, including its offset.
func readLength(ch *schema.Channel) int {
	switch {
	case ch.Bit:
		return ch.ReadWidth()
	case ch.Coil():
		return ch.Offset + 1
	}
	return ch.Offset + ch.ReadWidth()
}

func (m *Module) writeItems(items []schema.ChannelRecord) []schema.WriteResult {
	out := make([]schema.WriteResult, 0, len(items))
	for _, rec := range items {
		res := schema.WriteResult{ID: rec.ID}
		if rec.Value != nil {
			res.Value = *rec.Value
		}
		w, err := m.resolveWrite(rec)
		if err == nil {
			err = m.write(w)
		} else {
			m.modbusErrorMsg("write: ", err)
		}
		if err != nil {
			res.Error = err.Error()
		}
		out = append(out, res)
	}
	return out
}

// readOnRequest queues the items as on-demand reads. The reply goes out when the last group finishes.
func (m *Module) readOnRequest(cmd schema.Command) {
	var channels []*schema.Channel
	for _, rec := range cmd.Data {
		rec.R = true
		rec.PollTimeFctr = 1
		ch, err := schema.Resolve(rec, m.params)
		if err != nil {
			m.modbusErrorMsg("readOnReq: ", err)
			continue
		}
		channels = append(channels, ch)
	}
	id := m.pollManager.EnqueueOnDemand(pollqueue.Compile(channels, m.params.MaxReadLen))
	if id == 0 {
		reply := schema.NewReply(cmd, nil, false)
		reply.Result = schema.ResultReadRequestFail
		m.sendResponse(reply)
		return
	}
	m.pending[id] = cmd
}
