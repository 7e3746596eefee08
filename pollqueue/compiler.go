package pollqueue

import (
	"sort"

	"github.com/NubeIO/module-core-modbus-master/schema"
	"github.com/NubeIO/module-core-modbus-master/smod"
)

const (
	MaxCoilSpan     = 2000
	MaxRegisterSpan = 125
)

// MaxSpan is the largest request for a read function, optionally lowered by maxReadLen.
func MaxSpan(fc byte, maxReadLen int) int {
	span := MaxRegisterSpan
	if fc == smod.FunctionReadCoils || fc == smod.FunctionReadDiscrete {
		span = MaxCoilSpan
	}
	if maxReadLen > 0 && maxReadLen < span {
		span = maxReadLen
	}
	return span
}

type groupKey struct {
	node    string
	unit    byte
	fc      byte
	divisor int
}

// Compile batches the readable channels into poll groups. Groups come out in the catalog order of their
// first channel; within a group channels are laid out by address. Contiguous or overlapping channels share a
// request as long as the span fits MaxSpan, gaps always start a new request.
func Compile(channels []*schema.Channel, maxReadLen int) []*PollGroup {
	var keys []groupKey
	byKey := map[groupKey][]*schema.Channel{}
	for _, ch := range channels {
		if ch == nil || !ch.Readable {
			continue
		}
		k := groupKey{node: ch.Node.Key(), unit: ch.UnitID, fc: ch.Read.FunctionCode, divisor: ch.PollRateDivisor}
		if _, ok := byKey[k]; !ok {
			keys = append(keys, k)
		}
		byKey[k] = append(byKey[k], ch)
	}

	var groups []*PollGroup
	for _, k := range keys {
		chs := byKey[k]
		sort.SliceStable(chs, func(i, j int) bool { return chs[i].Read.Address < chs[j].Read.Address })
		span := MaxSpan(k.fc, maxReadLen)

		var cur *PollGroup
		var end int
		for _, ch := range chs {
			start := int(ch.Read.Address)
			stop := start + ch.ReadWidth()
			if cur != nil && start <= end && maxInt(end, stop)-int(cur.Address) <= span {
				end = maxInt(end, stop)
			} else {
				cur = &PollGroup{
					Node:            ch.Node,
					UnitID:          ch.UnitID,
					FunctionCode:    k.fc,
					Address:         ch.Read.Address,
					PollRateDivisor: k.divisor,
					PollCounter:     k.divisor,
				}
				end = stop
				groups = append(groups, cur)
			}
			cur.Quantity = uint16(end - int(cur.Address))
			offset := start - int(cur.Address)
			if !ch.Coil() {
				offset *= 2
			}
			cur.Refs = append(cur.Refs, ChannelRef{Ref: ch.Ref(offset), Title: ch.Title})
		}
	}
	return groups
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
