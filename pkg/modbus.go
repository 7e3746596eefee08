package pkg

import (
	"time"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/smod"
	log "github.com/sirupsen/logrus"
)

// Dialer opens a connection to a node.
type Dialer func(node schema.Node, timeout time.Duration) (smod.Client, error)

func DialModbus(node schema.Node, timeout time.Duration) (smod.Client, error) {
	c, err := smod.Dial(node.Host, node.Port, node.Transport, timeout)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// connections keeps one open client per node key. A failed connect is not retried until the node is used again.
type connections struct {
	dial    Dialer
	timeout time.Duration
	clients map[string]smod.Client
}

func newConnections(dial Dialer, timeout time.Duration) *connections {
	return &connections{dial: dial, timeout: timeout, clients: map[string]smod.Client{}}
}

func (c *connections) get(node schema.Node) (smod.Client, error) {
	key := node.Key()
	if client, ok := c.clients[key]; ok {
		return client, nil
	}
	client, err := c.dial(node, c.timeout)
	if err != nil {
		return nil, &requestError{node: key, connect: true, err: err}
	}
	c.clients[key] = client
	return client, nil
}

func (c *connections) drop(key string) {
	client, ok := c.clients[key]
	if !ok {
		return
	}
	delete(c.clients, key)
	if err := client.Close(); err != nil {
		log.Debugf("Modbus Master: close %s: %v", key, err)
	}
}

func (c *connections) retain(keys map[string]struct{}) {
	for key := range c.clients {
		if _, ok := keys[key]; !ok {
			c.drop(key)
		}
	}
}

func (c *connections) closeAll() {
	for key := range c.clients {
		c.drop(key)
	}
}

// request runs fn on the node's connection with the unit id selected. Network failures close the
// connection so the next use reconnects.
func (m *Module) request(node schema.Node, unit byte, fn func(smod.Client) ([]byte, error)) ([]byte, error) {
	client, err := m.conns.get(node)
	if err != nil {
		return nil, err
	}
	client.SetUnitID(unit)
	raw, err := fn(client)
	if err != nil {
		if smod.IsNetworkError(err) {
			m.conns.drop(node.Key())
		}
		return nil, &requestError{node: node.Key(), err: err}
	}
	return raw, nil
}
