package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/NubeIO/module-core-modbus-master/pollqueue"
	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/smod"
	"github.com/NubeIO/module-core-modbus-master/utils/writemode"
	"github.com/patrickmn/go-cache"
)

// run is the scheduler loop. Exactly one unit of work is in flight; inbound messages are handled between units.
func (m *Module) run(ctx context.Context) error {
	m.pollCounter = 0
	if m.config.StatisticsInterval > 0 {
		ticker := time.NewTicker(m.config.StatisticsInterval)
		defer ticker.Stop()
		m.statsTick = ticker.C
	}
	for {
		if err := m.drainInbox(ctx); err != nil {
			return err
		}
		worked, err := m.step()
		if err != nil {
			return err
		}
		if worked && m.pollManager.HasPendingItems() {
			continue
		}
		if err := m.wait(ctx); err != nil {
			return err
		}
	}
}

func (m *Module) drainInbox(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ErrStopped
		case msg := <-m.inbox:
			if err := msg.handle(m); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// wait sleeps one poll delay, handling messages as they arrive.
func (m *Module) wait(ctx context.Context) error {
	timer := time.NewTimer(m.params.PollDelayDuration())
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ErrStopped
		case <-timer.C:
			return nil
		case msg := <-m.inbox:
			if err := msg.handle(m); err != nil {
				return err
			}
		case <-m.statsTick:
			m.pollManager.PrintPollQueueStatistics()
		}
	}
}

// step executes the next unit of work. It reports false when nothing was due.
func (m *Module) step() (bool, error) {
	item := m.pollManager.GetNextPollingItem()
	if item == nil {
		m.modbusDebugMsg("nothing due")
		return false, nil
	}
	return true, m.execute(item)
}

func (m *Module) execute(item *pollqueue.QueueItem) error {
	m.pollCounter++
	m.modbusPollingMsg(fmt.Sprintf("LOOP COUNT: %d, next item drawn: %s", m.pollCounter, item))

	var ok, decodeFailed bool
	switch item.Kind {
	case pollqueue.KindWrite:
		ok = m.write(item.Write) == nil
	case pollqueue.KindOnDemand:
		ok, decodeFailed = m.pollGroup(item.Group, false)
	default:
		ok, decodeFailed = m.pollGroup(item.Group, m.params.SendChangesOnly())
	}

	done, failed := m.pollManager.PollingItemCompleteNotification(item, ok)
	if item.Kind == pollqueue.KindOnDemand && done {
		m.finishOnDemand(item.Group.RequestID, failed)
	}
	if ok && !decodeFailed {
		return nil
	}
	return m.checkCascade()
}

// pollGroup reads one group. The second result reports values that could not be decoded.
func (m *Module) pollGroup(g *pollqueue.PollGroup, changesOnly bool) (bool, bool) {
	raw, err := m.request(g.Node, g.UnitID, func(c smod.Client) ([]byte, error) {
		return c.Read(g.FunctionCode, g.Address, g.Quantity)
	})
	if err != nil {
		m.failed(g.ChannelIDs(), fmt.Errorf("poll %s: %w", g, err))
		return false, false
	}
	return true, m.forwardValues(smod.Decode(raw, g.DecodeRefs()), changesOnly)
}

func (m *Module) finishOnDemand(id uint64, failed bool) {
	cmd, ok := m.pending[id]
	if !ok {
		return
	}
	delete(m.pending, id)
	reply := schema.NewReply(cmd, nil, !failed)
	reply.Result = schema.ResultReadRequestOk
	if failed {
		reply.Result = schema.ResultReadRequestFail
	}
	m.sendResponse(reply)
}

// write executes one write item. A successful write clears a bad status; forced channels also
// echo the written value straight away.
func (m *Module) write(w *schema.WriteItem) error {
	m.modbusPollingMsg("write ", w)
	fc, payload, err := m.writePayload(w)
	if err == nil {
		qty := uint16(len(payload) / 2)
		if writemode.IsCoilWrite(fc) {
			qty = 1
		}
		_, err = m.request(w.Node, w.UnitID, func(c smod.Client) ([]byte, error) {
			return c.Write(fc, w.Address, qty, payload)
		})
	}
	if err != nil {
		err = fmt.Errorf("write %s: %w", w.ChannelID, err)
		if isRequestError(err) {
			m.failed([]string{w.ChannelID}, err)
		} else {
			m.modbusErrorMsg(err)
		}
		return err
	}
	recovered := len(m.health.MarkOK(w.ChannelID)) > 0
	switch {
	case w.Force:
		m.store.Set(w.ChannelID, w.Value, cache.NoExpiration)
		m.sendData([]schema.Update{schema.ValueUpdate(w.ChannelID, w.Value)})
	case recovered:
		m.sendData([]schema.Update{schema.OKUpdate(w.ChannelID)})
	}
	return nil
}

// writePayload encodes the value and picks the function code. Bit channels read the enclosing
// registers first and flip one bit.
func (m *Module) writePayload(w *schema.WriteItem) (byte, []byte, error) {
	fc := writemode.FunctionCode(w.FunctionCode, w.VarType.IsBool() && !w.Bit, w.VarType.Bytes())
	switch {
	case fc == writemode.WriteSingleCoil:
		return fc, smod.CoilPayload(w.Value != 0), nil
	case fc == writemode.WriteMultipleCoils:
		if w.Value != 0 {
			return fc, []byte{0x01}, nil
		}
		return fc, []byte{0x00}, nil
	case w.Bit:
		regs := uint16(w.VarType.Registers())
		current, err := m.request(w.Node, w.UnitID, func(c smod.Client) ([]byte, error) {
			return c.Read(w.BitReadFunctionCode, w.Address, regs)
		})
		if err != nil {
			return 0, nil, err
		}
		payload, err := smod.SetBit(current, w.BitOffset, w.Value != 0)
		if err != nil {
			return 0, nil, err
		}
		return writemode.FunctionCode(w.FunctionCode, false, len(payload)), payload, nil
	}
	payload, err := smod.EncodeValue(w.Value, w.VarType, w.Scale)
	if err != nil {
		return 0, nil, err
	}
	return writemode.FunctionCode(w.FunctionCode, w.VarType.IsBool(), len(payload)), payload, nil
}
