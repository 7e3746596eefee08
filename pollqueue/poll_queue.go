package pollqueue

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/NubeIO/module-core-modbus-master/utils"
	log "github.com/sirupsen/logrus"
)

type NetworkPriorityPollQueue struct {
	Config               *Config
	PriorityQueue        *PriorityPollQueue // writes and on-demand reads, always drained before the pass
	StandbyPollingPoints *StandbyPollQueue  // plan groups still due in the current pass
	QueueUnloader        QueueUnloader
	seq                  uint64
}

type QueueUnloader struct {
	CurrentItem *QueueItem
	StartTime   time.Time
}

func NewNetworkPriorityPollQueue(config *Config) *NetworkPriorityPollQueue {
	queue := &PriorityPollQueue{priorityQueue: make([]*QueueItem, 0)}
	heap.Init(queue)
	return &NetworkPriorityPollQueue{
		Config:               config,
		PriorityQueue:        queue,
		StandbyPollingPoints: &StandbyPollQueue{},
	}
}

func (nq *NetworkPriorityPollQueue) AddToPriorityQueue(item *QueueItem) {
	nq.seq++
	item.seq = nq.seq
	item.QueueEntryTime = time.Now().UnixNano()
	nq.pollQueueDebugMsg("AddToPriorityQueue(): ", item)
	nq.PriorityQueue.AddItem(item)
}

// GetNextItem takes the next write or on-demand read, then the next group of the running pass.
// It returns nil when both are empty; the caller decides whether a new pass starts.
func (nq *NetworkPriorityPollQueue) GetNextItem() *QueueItem {
	item := nq.PriorityQueue.GetNextItem()
	if item == nil {
		if g := nq.StandbyPollingPoints.GetNextPollGroup(); g != nil {
			item = &QueueItem{Kind: KindPoll, Priority: PriorityNormal, Group: g}
		}
	}
	nq.QueueUnloader.CurrentItem = item
	nq.QueueUnloader.StartTime = time.Now()
	return item
}

func (nq *NetworkPriorityPollQueue) EmptyQueue() {
	nq.PriorityQueue.EmptyQueue()
	nq.StandbyPollingPoints.EmptyQueue()
	nq.QueueUnloader = QueueUnloader{}
}

func (nq *NetworkPriorityPollQueue) pollQueueDebugMsg(args ...interface{}) {
	if utils.InEqualIgnoreCase(nq.Config.LogLevel, "DEBUG") {
		prefix := "Poll Queue: "
		log.Info(prefix, fmt.Sprint(args...))
	}
}
