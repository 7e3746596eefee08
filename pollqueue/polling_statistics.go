package pollqueue

import (
	"fmt"
	"math"
	"time"
)

type PollStatistics struct {
	MaxPollExecuteTimeSecs     float64 // time in seconds for a request to complete (doesn't include the time in queue).
	AveragePollExecuteTimeSecs float64
	MinPollExecuteTimeSecs     float64
	TotalPollCount             int64 // total number of requests completed.
	FailedPollCount            int64
	WriteCount                 int64
	OnDemandCount              int64
	PollCount                  int64
	PassCount                  int64
	PriorityQueueLength        int64 // writes and on-demand reads waiting.
	StandbyQueueLength         int64 // plan groups still due in the current pass.
	PlanGroups                 int64
	PollingStartTimeUnix       int64   // unix time (seconds) at polling start time.  Used for calculating Busy Time.
	BusyTime                   float64 // percent of the time spent waiting on devices.
	EnabledTime                float64 // time in seconds that the statistics have been running for.
}

// PollQueueStatistics is the printable form of PollStatistics.
type PollQueueStatistics struct {
	Enable                 bool   `json:"enable"`
	PluginName             string `json:"plugin_name"`
	MaxPollExecuteTime     string `json:"max_poll_execute_time"`
	AveragePollExecuteTime string `json:"average_poll_execute_time"`
	MinPollExecuteTime     string `json:"min_poll_execute_time"`
	TotalPollCount         int64  `json:"total_poll_count"`
	FailedPollCount        int64  `json:"failed_poll_count"`
	WriteCount             int64  `json:"write_count"`
	OnDemandCount          int64  `json:"on_demand_count"`
	PollCount              int64  `json:"poll_count"`
	PassCount              int64  `json:"pass_count"`
	PriorityQueueLength    int64  `json:"priority_queue_length"`
	StandbyQueueLength     int64  `json:"standby_queue_length"`
	PlanGroups             int64  `json:"plan_groups"`
	BusyTime               string `json:"busy_time"`
	EnabledTime            string `json:"enabled_time"`
}

func secs(s float64) string {
	return time.Duration(s * float64(time.Second)).String()
}

func (pm *NetworkPollManager) GetPollingQueueStatistics() *PollQueueStatistics {
	pm.pollQueueDebugMsg("GetPollingQueueStatistics()")
	pm.PartialPollStatsUpdate()
	s := pm.Statistics
	return &PollQueueStatistics{
		Enable:                 pm.Enable,
		PluginName:             pm.PluginName,
		MaxPollExecuteTime:     secs(s.MaxPollExecuteTimeSecs),
		AveragePollExecuteTime: secs(s.AveragePollExecuteTimeSecs),
		MinPollExecuteTime:     secs(s.MinPollExecuteTimeSecs),
		TotalPollCount:         s.TotalPollCount,
		FailedPollCount:        s.FailedPollCount,
		WriteCount:             s.WriteCount,
		OnDemandCount:          s.OnDemandCount,
		PollCount:              s.PollCount,
		PassCount:              s.PassCount,
		PriorityQueueLength:    s.PriorityQueueLength,
		StandbyQueueLength:     s.StandbyQueueLength,
		PlanGroups:             s.PlanGroups,
		BusyTime:               fmt.Sprintf("%.1f%%", s.BusyTime),
		EnabledTime:            secs(s.EnabledTime),
	}
}

func (pm *NetworkPollManager) StartPollingStatistics() {
	pm.pollQueueDebugMsg("StartPollingStatistics()")
	pm.Statistics = PollStatistics{PollingStartTimeUnix: time.Now().Unix()}
}

func (pm *NetworkPollManager) PollCompleteStatsUpdate(item *QueueItem, success bool, pollTimeSecs float64) {
	if pm.Statistics.MaxPollExecuteTimeSecs == 0 || pollTimeSecs > pm.Statistics.MaxPollExecuteTimeSecs {
		pm.Statistics.MaxPollExecuteTimeSecs = pollTimeSecs
	}
	if pm.Statistics.MinPollExecuteTimeSecs == 0 || pollTimeSecs < pm.Statistics.MinPollExecuteTimeSecs {
		pm.Statistics.MinPollExecuteTimeSecs = pollTimeSecs
	}
	pm.Statistics.AveragePollExecuteTimeSecs = ((pm.Statistics.AveragePollExecuteTimeSecs * float64(pm.Statistics.TotalPollCount)) + pollTimeSecs) / (float64(pm.Statistics.TotalPollCount) + 1)
	pm.Statistics.TotalPollCount++
	if !success {
		pm.Statistics.FailedPollCount++
	}
	switch item.Kind {
	case KindWrite:
		pm.Statistics.WriteCount++
	case KindOnDemand:
		pm.Statistics.OnDemandCount++
	case KindPoll:
		pm.Statistics.PollCount++
	}
	pm.PartialPollStatsUpdate()
	if pm.Statistics.EnabledTime > 0 {
		pm.Statistics.BusyTime = math.Round((((pm.Statistics.AveragePollExecuteTimeSecs*float64(pm.Statistics.TotalPollCount))/pm.Statistics.EnabledTime)*100)*1000) / 1000 // percentage rounded to 3 decimal places
	}
}

func (pm *NetworkPollManager) PartialPollStatsUpdate() {
	pm.Statistics.PriorityQueueLength = int64(pm.PollQueue.PriorityQueue.Size())
	pm.Statistics.StandbyQueueLength = int64(pm.PollQueue.StandbyPollingPoints.Len())
	pm.Statistics.PlanGroups = int64(len(pm.Plan))
	pm.Statistics.PassCount = pm.PassCount
	if pm.Statistics.PollingStartTimeUnix > 0 {
		pm.Statistics.EnabledTime = time.Since(time.Unix(pm.Statistics.PollingStartTimeUnix, 0)).Seconds()
	}
}
