package pollqueue

import (
	"fmt"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/smod"
)

type Priority int

const (
	PriorityASAP Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityASAP:
		return "ASAP"
	case PriorityHigh:
		return "High"
	case PriorityNormal:
		return "Normal"
	case PriorityLow:
		return "Low"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

type ItemKind int

const (
	KindWrite ItemKind = iota
	KindOnDemand
	KindPoll
)

func (k ItemKind) String() string {
	switch k {
	case KindWrite:
		return "write"
	case KindOnDemand:
		return "on-demand read"
	case KindPoll:
		return "poll"
	}
	return "unknown"
}

type ChannelRef struct {
	smod.Ref
	Title string
}

// PollGroup is one batched read request.
type PollGroup struct {
	Node            schema.Node
	UnitID          byte
	FunctionCode    byte
	Address         uint16
	Quantity        uint16
	Refs            []ChannelRef
	PollRateDivisor int
	PollCounter     int
	RequestID       uint64 // on-demand batch, zero for plan groups
}

func (g *PollGroup) DecodeRefs() []smod.Ref {
	out := make([]smod.Ref, len(g.Refs))
	for i, r := range g.Refs {
		out[i] = r.Ref
	}
	return out
}

func (g *PollGroup) ChannelIDs() []string {
	out := make([]string, len(g.Refs))
	for i, r := range g.Refs {
		out[i] = r.ID
	}
	return out
}

func (g *PollGroup) String() string {
	return fmt.Sprintf("%s unit:%d fc:%d addr:%d qty:%d refs:%d", g.Node.Key(), g.UnitID, g.FunctionCode, g.Address, g.Quantity, len(g.Refs))
}

// advance reports whether the group is due on this pass and moves its counter on.
func (g *PollGroup) advance() bool {
	due := g.PollCounter >= g.PollRateDivisor
	if g.PollCounter < g.PollRateDivisor {
		g.PollCounter++
	} else {
		g.PollCounter = 1
	}
	return due
}

// QueueItem is a unit of work: a write or a group read.
type QueueItem struct {
	Kind           ItemKind
	Priority       Priority
	Group          *PollGroup
	Write          *schema.WriteItem
	QueueEntryTime int64
	seq            uint64
}

func (qi *QueueItem) String() string {
	if qi.Write != nil {
		return fmt.Sprintf("%s %s", qi.Kind, qi.Write)
	}
	return fmt.Sprintf("%s %s", qi.Kind, qi.Group)
}
