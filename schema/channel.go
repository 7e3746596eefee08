package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/NubeIO/module-core-modbus-master/smod"
)

var (
	ErrMissingID      = errors.New("channel has no id")
	ErrAddressRange   = errors.New("address out of range")
	ErrReadOnly       = errors.New("channel is read only")
	ErrNotWritable    = errors.New("channel has no write side")
	ErrMissingVarType = errors.New("channel has empty vartype")
)

// Flag accepts true/false, 0/1 and their string forms; hosts send all of them.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	v, err := parseFlag(s)
	if err != nil {
		return err
	}
	*f = Flag(v)
	return nil
}

func (f *Flag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	v, err := parseFlag(fmt.Sprint(raw))
	if err != nil {
		return err
	}
	*f = Flag(v)
	return nil
}

// Int accepts a number or a numeric string.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	v, err := parseInt(strings.Trim(strings.TrimSpace(string(b)), `"`))
	if err != nil {
		return err
	}
	*i = Int(v)
	return nil
}

func (i *Int) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	v, err := parseInt(fmt.Sprint(raw))
	if err != nil {
		return err
	}
	*i = Int(v)
	return nil
}

func parseInt(s string) (int, error) {
	switch strings.ToLower(s) {
	case "", "null", "<nil>":
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	return 0, fmt.Errorf("invalid integer %q", s)
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "null", "<nil>":
		return false, nil
	case "1", "true":
		return true, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}

// ChannelRecord is a channel as the host stores it. Act and command items use the same shape plus Value/Length.
type ChannelRecord struct {
	ID            string   `json:"id" yaml:"id"`
	Chan          string   `json:"chan,omitempty" yaml:"chan,omitempty"`
	Title         string   `json:"title,omitempty" yaml:"title,omitempty"`
	NodeIP        string   `json:"nodeip" yaml:"nodeip"`
	NodePort      Int      `json:"nodeport" yaml:"nodeport"`
	NodeTransport string   `json:"nodetransport" yaml:"nodetransport"`
	UnitID        Int      `json:"unitid" yaml:"unitid"`
	Address       Int      `json:"address" yaml:"address"`
	FCR           Int      `json:"fcr,omitempty" yaml:"fcr,omitempty"`
	VarType       string   `json:"vartype" yaml:"vartype"`
	R             Flag     `json:"r" yaml:"r"`
	ReadOnly      Flag     `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	DiffW         Flag     `json:"diffw,omitempty" yaml:"diffw,omitempty"`
	WAddress      Int      `json:"waddress,omitempty" yaml:"waddress,omitempty"`
	WVarType      string   `json:"wvartype,omitempty" yaml:"wvartype,omitempty"`
	FCW           Int      `json:"fcw,omitempty" yaml:"fcw,omitempty"`
	Bit           Flag     `json:"bit,omitempty" yaml:"bit,omitempty"`
	Offset        Int      `json:"offset,omitempty" yaml:"offset,omitempty"`
	ManBO         Flag     `json:"manbo,omitempty" yaml:"manbo,omitempty"`
	ManBO8        string   `json:"manbo8,omitempty" yaml:"manbo8,omitempty"`
	ManBO16       string   `json:"manbo16,omitempty" yaml:"manbo16,omitempty"`
	ManBO32       string   `json:"manbo32,omitempty" yaml:"manbo32,omitempty"`
	ManBO64       string   `json:"manbo64,omitempty" yaml:"manbo64,omitempty"`
	UseK          Flag     `json:"usek,omitempty" yaml:"usek,omitempty"`
	KS0           float64  `json:"ks0,omitempty" yaml:"ks0,omitempty"`
	KS            float64  `json:"ks,omitempty" yaml:"ks,omitempty"`
	KH0           float64  `json:"kh0,omitempty" yaml:"kh0,omitempty"`
	KH            float64  `json:"kh,omitempty" yaml:"kh,omitempty"`
	ParentOffset  Int      `json:"parentoffset,omitempty" yaml:"parentoffset,omitempty"`
	PollTimeFctr  Int      `json:"polltimefctr,omitempty" yaml:"polltimefctr,omitempty"`
	Value         *float64 `json:"value,omitempty" yaml:"value,omitempty"`
	Length        Int      `json:"length,omitempty" yaml:"length,omitempty"`
}

func (r ChannelRecord) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Chan
}

type Node struct {
	Host      string
	Port      int
	Transport smod.Transport
}

func (n Node) Key() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

type Access struct {
	Address      uint16
	FunctionCode byte
	VarType      smod.VarType
}

// Channel is a ChannelRecord with every mode decided: read and write sides, byte orders and scaling.
type Channel struct {
	ID                  string
	Title               string
	Node                Node
	UnitID              byte
	Readable            bool
	ReadOnly            bool
	Read                Access
	Write               *Access
	WriteErr            error
	Force               bool
	Bit                 bool
	BitOffset           int
	BitReadFunctionCode byte
	Scale               *smod.Scale
	PollRateDivisor     int
	Length              int
	Offset              int
}

// Resolve turns a record into a Channel. An error means the channel cannot be read or written at all.
func Resolve(rec ChannelRecord, params Params) (*Channel, error) {
	if rec.ID == "" {
		return nil, ErrMissingID
	}
	transport, err := smod.ParseTransport(rec.NodeTransport)
	if err != nil {
		// kept as given, the connect attempt reports it against the node
		transport = smod.Transport(rec.NodeTransport)
	}
	ch := &Channel{
		ID:              rec.ID,
		Title:           rec.DisplayTitle(),
		Node:            Node{Host: rec.NodeIP, Port: int(rec.NodePort), Transport: transport},
		UnitID:          byte(rec.UnitID),
		Readable:        bool(rec.R),
		ReadOnly:        bool(rec.ReadOnly),
		Bit:             bool(rec.Bit),
		BitOffset:       int(rec.Offset),
		PollRateDivisor: int(rec.PollTimeFctr),
		Length:          int(rec.Length),
		Offset:          int(rec.Offset),
	}
	if ch.PollRateDivisor < 1 {
		ch.PollRateDivisor = 1
	}
	if rec.UseK && rec.KS != rec.KS0 {
		ch.Scale = &smod.Scale{RawLow: rec.KS0, RawHigh: rec.KS, EngLow: rec.KH0, EngHigh: rec.KH}
	}
	orders := params.ByteOrders()
	if rec.ManBO {
		orders = smod.ByteOrders{BO8: rec.ManBO8, BO16: rec.ManBO16, BO32: rec.ManBO32, BO64: rec.ManBO64}
	}

	readVT, readErr := resolveVarType(rec.VarType, orders)
	readAddr, addrErr := offsetAddress(int(rec.Address), int(rec.ParentOffset))
	if readErr == nil {
		readErr = addrErr
	}
	fcr := byte(rec.FCR)
	if fcr == 0 {
		fcr = smod.FunctionReadHolding
		if readVT.IsBool() && !ch.Bit {
			fcr = smod.FunctionReadCoils
		}
	}
	ch.Read = Access{Address: readAddr, FunctionCode: fcr, VarType: readVT}
	ch.BitReadFunctionCode = fcr
	if ch.Readable && readErr != nil {
		return nil, fmt.Errorf("channel %s: %w", rec.ID, readErr)
	}

	if ch.ReadOnly {
		ch.WriteErr = ErrReadOnly
		return ch, nil
	}
	distinct := bool(rec.DiffW) || (!ch.Readable && rec.WVarType != "")
	if distinct {
		vt, err := resolveVarType(rec.WVarType, orders)
		if err == nil {
			var addr uint16
			addr, err = offsetAddress(int(rec.WAddress), int(rec.ParentOffset))
			ch.Write = &Access{Address: addr, FunctionCode: byte(rec.FCW), VarType: vt}
		}
		if err != nil {
			ch.Write, ch.WriteErr = nil, err
		}
	} else if readErr != nil {
		ch.WriteErr = readErr
	} else {
		ch.Write = &Access{Address: readAddr, FunctionCode: byte(rec.FCW), VarType: readVT}
		ch.Force = ch.Readable
	}
	if !ch.Readable && ch.Write == nil {
		return nil, fmt.Errorf("channel %s: %w", rec.ID, ch.WriteErr)
	}
	return ch, nil
}

func resolveVarType(name string, orders smod.ByteOrders) (smod.VarType, error) {
	if strings.TrimSpace(name) == "" {
		return smod.VarType{}, ErrMissingVarType
	}
	return smod.ResolveVarType(name, orders)
}

func offsetAddress(addr, parent int) (uint16, error) {
	a := addr + parent
	if a < 0 || a > 0xFFFF {
		return 0, fmt.Errorf("%w: %d", ErrAddressRange, a)
	}
	return uint16(a), nil
}

// Coil reports whether the read side addresses single bits (function 1 or 2).
func (c *Channel) Coil() bool {
	return c.Read.FunctionCode == smod.FunctionReadCoils || c.Read.FunctionCode == smod.FunctionReadDiscrete
}

// ReadWidth is the number of registers (or coils) the read side covers.
func (c *Channel) ReadWidth() int {
	if c.Coil() {
		return 1
	}
	return c.Read.VarType.Registers()
}

// Ref places the channel at offset inside a response buffer.
func (c *Channel) Ref(offset int) smod.Ref {
	return smod.Ref{
		ID:        c.ID,
		Offset:    offset,
		VarType:   c.Read.VarType,
		Coil:      c.Coil(),
		Bit:       c.Bit,
		BitOffset: c.BitOffset,
		Scale:     c.Scale,
	}
}

// WriteItem is a fully resolved write request.
type WriteItem struct {
	ChannelID           string
	Title               string
	Node                Node
	UnitID              byte
	Address             uint16
	FunctionCode        byte
	VarType             smod.VarType
	Bit                 bool
	BitOffset           int
	BitReadFunctionCode byte
	Scale               *smod.Scale
	Force               bool
	Value               float64
}

// WriteItem binds value to the channel's write side.
func (c *Channel) WriteItem(value float64) (*WriteItem, error) {
	if c.ReadOnly {
		return nil, fmt.Errorf("channel %s: %w", c.ID, ErrReadOnly)
	}
	if c.Write == nil {
		err := c.WriteErr
		if err == nil {
			err = ErrNotWritable
		}
		return nil, fmt.Errorf("channel %s: %w", c.ID, err)
	}
	return &WriteItem{
		ChannelID:           c.ID,
		Title:               c.Title,
		Node:                c.Node,
		UnitID:              c.UnitID,
		Address:             c.Write.Address,
		FunctionCode:        c.Write.FunctionCode,
		VarType:             c.Write.VarType,
		Bit:                 c.Bit,
		BitOffset:           c.BitOffset,
		BitReadFunctionCode: c.BitReadFunctionCode,
		Scale:               c.Scale,
		Force:               c.Force,
		Value:               value,
	}, nil
}

// ResolveWrite resolves an act/write item carrying its own value.
func ResolveWrite(rec ChannelRecord, params Params) (*WriteItem, error) {
	if rec.Value == nil {
		return nil, fmt.Errorf("channel %s: write item has no value", rec.ID)
	}
	ch, err := Resolve(rec, params)
	if err != nil {
		return nil, err
	}
	return ch.WriteItem(*rec.Value)
}

func (w WriteItem) String() string {
	b, _ := json.Marshal(struct {
		ID      string  `json:"id"`
		Node    string  `json:"node"`
		Unit    byte    `json:"unitid"`
		Address uint16  `json:"address"`
		VarType string  `json:"vartype"`
		Value   float64 `json:"value"`
	}{w.ChannelID, w.Node.Key(), w.UnitID, w.Address, w.VarType.String(), w.Value})
	return string(b)
}
