package pollqueue

import (
	"time"

	"github.com/NubeIO/module-core-modbus-master/schema"
)

type Config struct {
	EnableStatistics bool   `yaml:"enable_statistics"`
	LogLevel         string `yaml:"log_level"`
}

type onDemandBatch struct {
	remaining int
	failed    bool
}

// NetworkPollManager owns the poll plan and the dispatch queues. One scheduler loop drives it.
type NetworkPollManager struct {
	Config    *Config
	Enable    bool
	PollQueue *NetworkPriorityPollQueue
	Plan      []*PollGroup
	PassCount int64

	PluginName string

	requestSeq uint64
	onDemand   map[uint64]*onDemandBatch

	// Stats
	Statistics PollStatistics
}

func NewPollManager(conf *Config, pluginName string) *NetworkPollManager {
	if conf == nil {
		conf = &Config{}
	}
	return &NetworkPollManager{
		Config:     conf,
		PollQueue:  NewNetworkPriorityPollQueue(conf),
		PluginName: pluginName,
		onDemand:   map[uint64]*onDemandBatch{},
	}
}

func (pm *NetworkPollManager) StartPolling() {
	pm.pollQueueDebugMsg("StartPolling()")
	pm.Enable = true
	pm.StartPollingStatistics()
}

func (pm *NetworkPollManager) StopPolling() {
	pm.pollQueueDebugMsg("StopPolling()")
	pm.Enable = false
	pm.PollQueue.EmptyQueue()
	pm.onDemand = map[uint64]*onDemandBatch{}
}

// SetPlan replaces the poll plan. Groups of the running pass are dropped, queued items are kept.
func (pm *NetworkPollManager) SetPlan(groups []*PollGroup) {
	pm.pollQueueDebugMsg("SetPlan(): groups ", len(groups))
	pm.Plan = groups
	pm.PollQueue.StandbyPollingPoints.EmptyQueue()
}

// ClearWrites drops every pending write and returns how many were dropped.
func (pm *NetworkPollManager) ClearWrites() int {
	n := pm.PollQueue.PriorityQueue.RemoveByKind(KindWrite)
	pm.pollQueueDebugMsg("ClearWrites(): removed ", n)
	return n
}

func (pm *NetworkPollManager) EnqueueWrite(w *schema.WriteItem) {
	pm.PollQueue.AddToPriorityQueue(&QueueItem{Kind: KindWrite, Priority: PriorityASAP, Write: w})
}

// EnqueueOnDemand queues a batch of on-demand reads and returns its request id, or 0 for an empty batch.
func (pm *NetworkPollManager) EnqueueOnDemand(groups []*PollGroup) uint64 {
	if len(groups) == 0 {
		return 0
	}
	pm.requestSeq++
	id := pm.requestSeq
	pm.onDemand[id] = &onDemandBatch{remaining: len(groups)}
	for _, g := range groups {
		g.RequestID = id
		pm.PollQueue.AddToPriorityQueue(&QueueItem{Kind: KindOnDemand, Priority: PriorityHigh, Group: g})
	}
	return id
}

// HasPendingItems reports queued writes or on-demand reads.
func (pm *NetworkPollManager) HasPendingItems() bool {
	return pm.PollQueue.PriorityQueue.Size() > 0
}

func (pm *NetworkPollManager) elapsed(start time.Time) float64 {
	if start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}
