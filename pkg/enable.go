package pkg

import (
	"context"
	"errors"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/shared"
	log "github.com/sirupsen/logrus"
)

// Start runs startup against host and, when it succeeds, the scheduler loop in the background.
// A startup failure finishes the module; Done and Err report it as well.
func (m *Module) Start(host shared.Host) error {
	m.mu.Lock()
	if m.inbox != nil {
		m.mu.Unlock()
		return nil
	}
	log.Info("plugin Start()")
	m.inbox = make(chan message, m.config.InboxSize)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.mu.Unlock()

	if err := m.startup(host); err != nil {
		m.modbusErrorMsg("startup failed: ", err)
		m.finish(err)
		return err
	}
	go m.loop()
	return nil
}

func (m *Module) loop() {
	err := m.run(m.ctx)
	if errors.Is(err, ErrStopped) {
		err = nil
	}
	m.finish(err)
}

func (m *Module) finish(err error) {
	if m.conns != nil {
		m.conns.closeAll()
	}
	if m.pollManager != nil {
		m.pollManager.StopPolling()
	}
	if err != nil {
		m.modbusErrorMsg("stopped: ", err)
	} else {
		m.modbusPollingMsg("stopped")
	}
	m.err = err
	close(m.done)
}

func (m *Module) post(msg message) error {
	m.mu.Lock()
	inbox := m.inbox
	m.mu.Unlock()
	if inbox == nil {
		return ErrNotStarted
	}
	select {
	case <-m.done:
		return ErrStopped
	default:
	}
	select {
	case <-m.done:
		return ErrStopped
	case inbox <- msg:
		return nil
	}
}

func (m *Module) Act(items []schema.ChannelRecord) error {
	return m.post(actMessage{items: items})
}

func (m *Module) Command(cmd schema.Command) error {
	return m.post(commandMessage{cmd: cmd})
}

func (m *Module) ChannelsChanged() error {
	return m.post(channelsChangedMessage{})
}

func (m *Module) Stop() error {
	log.Info("plugin Stop()")
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// Done is closed once the module has finished.
func (m *Module) Done() <-chan struct{} {
	return m.done
}

// Err is the reason the module finished, valid after Done is closed.
func (m *Module) Err() error {
	return m.err
}
