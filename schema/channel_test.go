package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/NubeIO/module-core-modbus-master/smod"
	"github.com/go-yaml/yaml"
)

func baseRecord() ChannelRecord {
	return ChannelRecord{
		ID:            "ch1",
		Chan:          "temp",
		NodeIP:        "10.0.0.5",
		NodePort:      502,
		NodeTransport: "tcp",
		UnitID:        1,
		Address:       100,
		VarType:       "int16",
		R:             true,
	}
}

func TestResolveSharedReadWrite(t *testing.T) {
	ch, err := Resolve(baseRecord(), Params{BO16: "le"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Node.Key() != "10.0.0.5:502" || ch.Title != "temp" {
		t.Fatalf("got node %s title %s", ch.Node.Key(), ch.Title)
	}
	if ch.Read.FunctionCode != 3 || ch.Read.Address != 100 {
		t.Fatalf("got read %+v", ch.Read)
	}
	if ch.Read.VarType != (smod.VarType{Kind: smod.Int16, Order: smod.LittleEndian}) {
		t.Fatalf("got vartype %v", ch.Read.VarType)
	}
	if ch.Write == nil || ch.Write.Address != 100 || !ch.Force {
		t.Fatalf("shared write side expected with force, got %+v force=%v", ch.Write, ch.Force)
	}
	if ch.PollRateDivisor != 1 {
		t.Fatalf("got divisor %d", ch.PollRateDivisor)
	}
}

func TestResolveDistinctWrite(t *testing.T) {
	rec := baseRecord()
	rec.DiffW = true
	rec.WAddress = 200
	rec.WVarType = "float"
	rec.ParentOffset = 10
	ch, err := Resolve(rec, Params{BO32: "sw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Read.Address != 110 || ch.Write.Address != 210 {
		t.Fatalf("got read %d write %d", ch.Read.Address, ch.Write.Address)
	}
	if ch.Write.VarType != (smod.VarType{Kind: smod.Float, Order: smod.WordSwap}) || ch.Force {
		t.Fatalf("got %+v force=%v", ch.Write, ch.Force)
	}
}

func TestResolveWriteOnlyChannel(t *testing.T) {
	rec := baseRecord()
	rec.R = false
	rec.VarType = ""
	rec.WAddress = 5
	rec.WVarType = "uint32"
	ch, err := Resolve(rec, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Readable || ch.Write == nil || ch.Write.Address != 5 {
		t.Fatalf("got %+v", ch)
	}
}

func TestResolveDefaults(t *testing.T) {
	rec := baseRecord()
	rec.VarType = "bool"
	ch, err := Resolve(rec, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Read.FunctionCode != smod.FunctionReadCoils || !ch.Coil() {
		t.Fatalf("bool channel should read coils, got fc %d", ch.Read.FunctionCode)
	}
	rec.Bit = true
	rec.Offset = 4
	ch, _ = Resolve(rec, Params{})
	if ch.Read.FunctionCode != smod.FunctionReadHolding || ch.BitOffset != 4 {
		t.Fatalf("bit channel should read holding registers, got %+v", ch)
	}
}

func TestResolveManualByteOrder(t *testing.T) {
	rec := baseRecord()
	rec.ManBO = true
	rec.ManBO16 = "be"
	ch, err := Resolve(rec, Params{BO16: "le"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.Read.VarType.Order != smod.BigEndian {
		t.Fatalf("got %v", ch.Read.VarType)
	}
}

func TestResolveErrors(t *testing.T) {
	rec := baseRecord()
	rec.VarType = ""
	if _, err := Resolve(rec, Params{}); !errors.Is(err, ErrMissingVarType) {
		t.Fatalf("expected ErrMissingVarType, got %v", err)
	}
	rec = baseRecord()
	rec.ID = ""
	if _, err := Resolve(rec, Params{}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	rec = baseRecord()
	rec.Address = 70000
	if _, err := Resolve(rec, Params{}); !errors.Is(err, ErrAddressRange) {
		t.Fatalf("expected ErrAddressRange, got %v", err)
	}
}

func TestReadOnlyRejectsWrite(t *testing.T) {
	rec := baseRecord()
	rec.ReadOnly = true
	v := 3.0
	rec.Value = &v
	if _, err := ResolveWrite(rec, Params{}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestResolveWriteScaled(t *testing.T) {
	rec := baseRecord()
	rec.UseK = true
	rec.KS0, rec.KS, rec.KH0, rec.KH = 0, 1000, 0, 100
	v := 12.5
	rec.Value = &v
	w, err := ResolveWrite(rec, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Scale == nil || w.Scale.ToRaw(w.Value) != 125 {
		t.Fatalf("got %+v", w.Scale)
	}
}

func TestFlagDecoding(t *testing.T) {
	var rec ChannelRecord
	if err := json.Unmarshal([]byte(`{"id":"a","r":1,"diffw":"true","bit":false,"usek":0}`), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rec.R || !rec.DiffW || rec.Bit || rec.UseK {
		t.Fatalf("got %+v", rec)
	}
	var y ChannelRecord
	if err := yaml.Unmarshal([]byte("id: b\nr: 1\nmanbo: true\n"), &y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !y.R || !y.ManBO {
		t.Fatalf("got %+v", y)
	}
}

func TestIntDecoding(t *testing.T) {
	var rec ChannelRecord
	if err := json.Unmarshal([]byte(`{"id":"a","nodeport":"502","unitid":3,"address":"40","fcr":"4.0","offset":null}`), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.NodePort != 502 || rec.UnitID != 3 || rec.Address != 40 || rec.FCR != 4 || rec.Offset != 0 {
		t.Fatalf("got %+v", rec)
	}
	var y ChannelRecord
	if err := yaml.Unmarshal([]byte("id: b\nnodeport: \"1502\"\nwaddress: 7\npolltimefctr: '3'\n"), &y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if y.NodePort != 1502 || y.WAddress != 7 || y.PollTimeFctr != 3 {
		t.Fatalf("got %+v", y)
	}
	if err := json.Unmarshal([]byte(`{"address":"12a"}`), &rec); err == nil {
		t.Fatal("expected an error for a non numeric address")
	}
	if err := json.Unmarshal([]byte(`{"address":1.5}`), &rec); err == nil {
		t.Fatal("expected an error for a fractional address")
	}
}
