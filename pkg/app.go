package pkg

import (
	"fmt"

	"github.com/NubeIO/module-core-modbus-master/pollqueue"
	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/shared"
)

// startup loads params and channels, connects every node once and starts polling.
func (m *Module) startup(host shared.Host) error {
	m.host = host
	params, err := host.Params()
	if err != nil {
		return fmt.Errorf("get params: %w", err)
	}
	m.params = params
	records, err := host.Channels()
	if err != nil {
		return fmt.Errorf("get channels: %w", err)
	}
	if len(records) == 0 {
		return ErrNoChannels
	}

	m.newPollManager()
	m.conns = newConnections(m.dial, params.TimeoutDuration())
	if err := m.loadCatalog(records); err != nil {
		return err
	}
	if err := m.connectAll(); err != nil {
		return err
	}
	if err := host.SendWorkingState(); err != nil {
		m.modbusDebugMsg("working state not sent: ", err)
	}
	m.pollManager.StartPolling()
	return nil
}

// loadCatalog replaces the catalog and poll plan. Channels that do not resolve are reported bad and left out.
func (m *Module) loadCatalog(records []schema.ChannelRecord) error {
	catalog := make(map[string]*schema.Channel, len(records))
	titles := make(map[string]string, len(records))
	order := make([]string, 0, len(records))
	channels := make([]*schema.Channel, 0, len(records))
	var unresolved []string

	for _, rec := range records {
		if rec.ID == "" {
			m.modbusErrorMsg("skipping channel without id: ", rec.DisplayTitle())
			continue
		}
		if _, dup := titles[rec.ID]; dup {
			m.modbusErrorMsg("skipping duplicate channel id: ", rec.ID)
			continue
		}
		titles[rec.ID] = rec.DisplayTitle()
		order = append(order, rec.ID)
		ch, err := schema.Resolve(rec, m.params)
		if err != nil {
			m.modbusErrorMsg(err)
			unresolved = append(unresolved, rec.ID)
			continue
		}
		catalog[rec.ID] = ch
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return ErrNoUsableChannels
	}

	m.catalog, m.titles, m.order = catalog, titles, order
	m.pollManager.SetPlan(pollqueue.Compile(channels, m.params.MaxReadLen))
	m.pollManager.PrintPollPlan()
	m.health.Reset(order)
	m.store.Flush()

	nodes := map[string]struct{}{}
	for _, ch := range channels {
		nodes[ch.Node.Key()] = struct{}{}
	}
	m.conns.retain(nodes)

	m.sendData(m.badUpdates(m.health.MarkBad(unresolved...)))
	return nil
}

// connectAll opens every node once. Unreachable nodes take their channels down with them.
func (m *Module) connectAll() error {
	seen := map[string]bool{}
	for _, id := range m.order {
		ch, ok := m.catalog[id]
		if !ok || seen[ch.Node.Key()] {
			continue
		}
		seen[ch.Node.Key()] = true
		if _, err := m.conns.get(ch.Node); err != nil {
			m.failed(nil, err)
		}
	}
	return m.checkCascade()
}
