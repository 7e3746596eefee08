package pollqueue

import (
	"fmt"
	"strings"

	"github.com/NubeIO/module-core-modbus-master/utils"
	log "github.com/sirupsen/logrus"
)

func (pm *NetworkPollManager) pollQueueDebugMsg(args ...interface{}) {
	if utils.InEqualIgnoreCase(pm.Config.LogLevel, "DEBUG") {
		prefix := fmt.Sprintf("%s Poll Queue: ", pm.PluginName)
		log.Info(prefix, fmt.Sprint(args...))
	}
}

func (pm *NetworkPollManager) pollQueuePollingMsg(args ...interface{}) {
	if utils.InEqualIgnoreCase(pm.Config.LogLevel, "POLLING", "DEBUG") {
		prefix := fmt.Sprintf("%s Poll Queue: ", pm.PluginName)
		log.Info(prefix, fmt.Sprint(args...))
	}
}

func (pm *NetworkPollManager) pollQueueErrorMsg(args ...interface{}) {
	prefix := fmt.Sprintf("%s Poll Queue: ", pm.PluginName)
	log.Error(prefix, fmt.Sprint(args...))
}

func (pm *NetworkPollManager) PrintPollPlan() {
	if utils.InEqualIgnoreCase(pm.Config.LogLevel, "DEBUG") { // Added here to disable debug processes when not using logging
		var b strings.Builder
		fmt.Fprintf(&b, "\n\nPollPlan: COUNT = %d\n", len(pm.Plan))
		for i, g := range pm.Plan {
			fmt.Fprintf(&b, "%d: %s every %d (counter %d) ids %v\n", i, g, g.PollRateDivisor, g.PollCounter, g.ChannelIDs())
		}
		pm.pollQueueDebugMsg(b.String())
	}
}

func (pm *NetworkPollManager) PrintPollQueueStatistics() {
	if !pm.Config.EnableStatistics && !utils.InEqualIgnoreCase(pm.Config.LogLevel, "DEBUG") {
		return
	}
	s := pm.GetPollingQueueStatistics()
	counts := pm.PollQueue.PriorityQueue.CountByPriority()
	log.WithFields(log.Fields{
		"total":    s.TotalPollCount,
		"failed":   s.FailedPollCount,
		"writes":   s.WriteCount,
		"onDemand": s.OnDemandCount,
		"polls":    s.PollCount,
		"passes":   s.PassCount,
		"asap":     counts[PriorityASAP],
		"high":     counts[PriorityHigh],
		"standby":  s.StandbyQueueLength,
		"groups":   s.PlanGroups,
		"avg":      s.AveragePollExecuteTime,
		"max":      s.MaxPollExecuteTime,
		"min":      s.MinPollExecuteTime,
		"busy":     s.BusyTime,
		"enabled":  s.EnabledTime,
	}).Info(fmt.Sprintf("%s Poll Queue: statistics", pm.PluginName))
}
