package pkg

import (
	"github.com/NubeIO/module-core-modbus-master/schema"
)

// message is an inbound event, handled on the loop goroutine.
type message interface {
	handle(m *Module) error
}

type actMessage struct {
	items []schema.ChannelRecord
}

// handle queues every valid item as a write.
func (a actMessage) handle(m *Module) error {
	for _, rec := range a.items {
		w, err := m.resolveWrite(rec)
		if err != nil {
			m.modbusErrorMsg("act: ", err)
			continue
		}
		m.pollManager.EnqueueWrite(w)
	}
	return nil
}

type commandMessage struct {
	cmd schema.Command
}

func (c commandMessage) handle(m *Module) error {
	m.handleCommand(c.cmd)
	return m.checkCascade()
}

type channelsChangedMessage struct{}

// handle finishes at most one pending unit of work, then reloads the catalog. Pending writes and the running
// pass are dropped, on-demand reads survive.
func (channelsChangedMessage) handle(m *Module) error {
	if m.pollManager.HasPendingItems() {
		if _, err := m.step(); err != nil {
			return err
		}
	}
	records, err := m.host.Channels()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrEmptyCatalog
	}
	if err := m.loadCatalog(records); err != nil {
		return err
	}
	m.pollManager.ClearWrites()
	m.modbusDebugMsg("channels reloaded: ", len(m.catalog))
	return nil
}

// resolveWrite binds the item's value to the catalog channel with the same id; unknown ids are
// resolved from the item itself.
func (m *Module) resolveWrite(rec schema.ChannelRecord) (*schema.WriteItem, error) {
	if ch, ok := m.catalog[rec.ID]; ok && rec.Value != nil {
		return ch.WriteItem(*rec.Value)
	}
	return schema.ResolveWrite(rec, m.params)
}
