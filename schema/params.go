package schema

import (
	"time"

	"github.com/NubeIO/module-core-modbus-master/smod"
)

const (
	DefaultTimeoutMs   = 1000
	DefaultPollDelayMs = 1
)

// Params are the gateway wide settings supplied by the host.
type Params struct {
	Timeout     int    `json:"timeout" yaml:"timeout"`
	PollDelay   int    `json:"polldelay" yaml:"polldelay"`
	SendChanges int    `json:"sendChanges" yaml:"sendChanges"`
	BO8         string `json:"bo8" yaml:"bo8"`
	BO16        string `json:"bo16" yaml:"bo16"`
	BO32        string `json:"bo32" yaml:"bo32"`
	BO64        string `json:"bo64" yaml:"bo64"`
	MaxReadLen  int    `json:"maxreadlen" yaml:"maxreadlen"`
}

func (p Params) TimeoutDuration() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeoutMs * time.Millisecond
	}
	return time.Duration(p.Timeout) * time.Millisecond
}

func (p Params) PollDelayDuration() time.Duration {
	if p.PollDelay <= 0 {
		return DefaultPollDelayMs * time.Millisecond
	}
	return time.Duration(p.PollDelay) * time.Millisecond
}

func (p Params) SendChangesOnly() bool {
	return p.SendChanges == 1
}

func (p Params) ByteOrders() smod.ByteOrders {
	return smod.ByteOrders{BO8: p.BO8, BO16: p.BO16, BO32: p.BO32, BO64: p.BO64}
}
