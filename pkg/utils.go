package pkg

import (
	"errors"
	"fmt"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/smod"
	"github.com/NubeIO/module-core-modbus-master/utils"
	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

const logPrefix = "Modbus Master: "

func (m *Module) modbusDebugMsg(args ...interface{}) {
	if utils.InEqualIgnoreCase(m.config.LogLevel, "DEBUG") {
		log.Info(logPrefix, fmt.Sprint(args...))
	}
}

func (m *Module) modbusPollingMsg(args ...interface{}) {
	if utils.InEqualIgnoreCase(m.config.LogLevel, "POLLING", "DEBUG") {
		log.Info(logPrefix, fmt.Sprint(args...))
	}
}

func (m *Module) modbusErrorMsg(args ...interface{}) {
	log.Error(logPrefix, fmt.Sprint(args...))
}

// logRequestError logs link trouble as a warning and everything else as an error.
func (m *Module) logRequestError(err error) {
	if smod.IsNetworkError(err) {
		log.Warn(logPrefix, err)
		return
	}
	if code, ok := smod.ExceptionCode(err); ok {
		m.modbusErrorMsg(fmt.Sprintf("%v (exception %d)", err, code))
		return
	}
	m.modbusErrorMsg(err)
}

func (m *Module) sendData(updates []schema.Update) {
	if len(updates) == 0 {
		return
	}
	for _, u := range updates {
		fields := log.Fields{"id": u.ID, "chstatus": u.Status}
		if u.Value != nil {
			fields["value"] = *u.Value
		}
		log.WithFields(fields).Debug(logPrefix, "send data")
	}
	if err := m.host.SendData(updates); err != nil {
		m.modbusErrorMsg("failed to send data: ", err)
	}
}

func (m *Module) sendResponse(reply schema.Reply) {
	m.modbusDebugMsg(fmt.Sprintf("reply %s %s ok:%t", reply.Command.Command, reply.Result, reply.OK))
	if err := m.host.SendResponse(reply); err != nil {
		m.modbusErrorMsg("failed to send response: ", err)
	}
}

// forwardValues reports decoded values. With changesOnly a value goes out only when it differs from the last
// one sent or the channel is coming back from bad. Values that failed to decode mark their channel bad.
func (m *Module) forwardValues(values []smod.Value, changesOnly bool) bool {
	var updates []schema.Update
	var failed []string
	for _, v := range values {
		if v.Err != nil {
			m.modbusErrorMsg(fmt.Sprintf("failed to decode %s: %v", v.ID, v.Err))
			failed = append(failed, v.ID)
			continue
		}
		recovered := len(m.health.MarkOK(v.ID)) > 0
		if changesOnly && !recovered {
			if last, ok := m.store.Get(v.ID); ok && last.(float64) == v.Value {
				continue
			}
		}
		m.store.Set(v.ID, v.Value, cache.NoExpiration)
		updates = append(updates, schema.ValueUpdate(v.ID, v.Value))
	}
	updates = append(updates, m.badUpdates(m.health.MarkBad(failed...))...)
	m.sendData(updates)
	return len(failed) > 0
}

func (m *Module) badUpdates(ids []string) []schema.Update {
	out := make([]schema.Update, 0, len(ids))
	for _, id := range ids {
		out = append(out, schema.BadUpdate(id, m.titles[id]))
	}
	return out
}

// failed records a failed request touching ids. When the node could not be reached every channel on it is bad.
func (m *Module) failed(ids []string, err error) {
	m.logRequestError(err)
	var reqErr *requestError
	if errors.As(err, &reqErr) && reqErr.connect {
		ids = m.nodeChannels(reqErr.node)
	}
	m.sendData(m.badUpdates(m.health.MarkBad(ids...)))
}

func (m *Module) nodeChannels(key string) []string {
	var ids []string
	for _, id := range m.order {
		if ch, ok := m.catalog[id]; ok && ch.Node.Key() == key {
			ids = append(ids, id)
		}
	}
	return ids
}

// checkCascade ends the module once every channel is bad.
func (m *Module) checkCascade() error {
	if !m.health.AllBad() {
		return nil
	}
	m.modbusErrorMsg("all channels are bad, closing connections")
	m.conns.closeAll()
	return ErrAllChannelsBad
}
