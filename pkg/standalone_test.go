package pkg

import (
	"os"
	"path/filepath"
	"testing"
)

const gatewayYAML = `
config:
  log_level: error
  inbox_size: 16
params:
  timeout: 250
  sendChanges: 1
  bo32: sw
channels:
  - id: a
    title: boiler temp
    nodeip: 10.0.0.1
    nodeport: "502"
    nodetransport: tcp
    unitid: 1
    address: 4
    vartype: int16
    r: 1
  - id: w
    nodeip: 10.0.0.1
    nodeport: 502
    unitid: "1"
    waddress: "9"
    wvartype: uint16
    r: false
`

func writeGatewayFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoadGatewayFile(t *testing.T) {
	gf, err := LoadGatewayFile(writeGatewayFile(t, gatewayYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gf.Params.Timeout != 250 || !gf.Params.SendChangesOnly() || gf.Params.BO32 != "sw" {
		t.Fatalf("got params %+v", gf.Params)
	}
	if len(gf.Channels) != 2 {
		t.Fatalf("got %d channels", len(gf.Channels))
	}
	a, w := gf.Channels[0], gf.Channels[1]
	if a.NodePort != 502 || a.Address != 4 || !bool(a.R) || a.Title != "boiler temp" {
		t.Fatalf("got %+v", a)
	}
	if w.UnitID != 1 || w.WAddress != 9 || bool(w.R) {
		t.Fatalf("got %+v", w)
	}

	conf, err := gf.ConfigBytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	network := newFakeNetwork()
	client := network.add("10.0.0.1:502")
	client.regs[4] = 21
	m := NewModule(WithDialer(network.dial))
	if _, err := m.ValidateAndSetConfig(conf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.config.InboxSize != 16 || m.config.LogLevel != "ERROR" {
		t.Fatalf("got config %+v", m.config)
	}
	if err := m.startup(&LogHost{File: gf}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.catalog) != 2 || m.catalog["w"].Write == nil || m.catalog["w"].Write.Address != 9 {
		t.Fatalf("got catalog %+v", m.catalog)
	}
	mustStep(t, m)
	if v, ok := m.store.Get("a"); !ok || v.(float64) != 21 {
		t.Fatalf("got %v %t", v, ok)
	}
}

func TestLoadGatewayFileErrors(t *testing.T) {
	if _, err := LoadGatewayFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if _, err := LoadGatewayFile(writeGatewayFile(t, "channels:\n  - nodeport: five\n")); err == nil {
		t.Fatal("expected an error for a non numeric port")
	}
	gf, err := LoadGatewayFile(writeGatewayFile(t, "params:\n  timeout: 100\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf, err := gf.ConfigBytes(); err != nil || conf != nil {
		t.Fatalf("missing config section should give nil, got %q %v", conf, err)
	}
}
