package pollqueue

import "fmt"

// GetNextPollingItem returns the next unit of work. When both the priority queue and the running pass are
// empty a new pass is built from the plan; nil means nothing is due right now.
func (pm *NetworkPollManager) GetNextPollingItem() *QueueItem {
	if item := pm.PollQueue.GetNextItem(); item != nil {
		return item
	}
	if pm.RebuildPollingQueue() == 0 {
		return nil
	}
	return pm.PollQueue.GetNextItem()
}

// RebuildPollingQueue starts a new pass: every plan group advances its rate counter and the due ones are
// queued in plan order. Returns the number of groups queued.
func (pm *NetworkPollManager) RebuildPollingQueue() int {
	pm.PassCount++
	due := 0
	for _, g := range pm.Plan {
		if g.advance() {
			pm.PollQueue.StandbyPollingPoints.AddPollGroup(g)
			due++
		}
	}
	pm.pollQueuePollingMsg(fmt.Sprintf("RebuildPollingQueue(): pass %d, %d of %d groups due", pm.PassCount, due, len(pm.Plan)))
	return due
}

// PollingItemCompleteNotification records the outcome of item. For on-demand reads it reports whether the
// item was the last of its batch and whether any group of that batch failed.
func (pm *NetworkPollManager) PollingItemCompleteNotification(item *QueueItem, success bool) (batchDone, batchFailed bool) {
	pollTimeSecs := pm.elapsed(pm.PollQueue.QueueUnloader.StartTime)
	pm.pollQueuePollingMsg(fmt.Sprintf("POLLING COMPLETE: %s, success: %t, pollTime: %f", item, success, pollTimeSecs))
	pm.PollCompleteStatsUpdate(item, success, pollTimeSecs)
	pm.PollQueue.QueueUnloader = QueueUnloader{}

	if item.Kind != KindOnDemand || item.Group == nil {
		return false, false
	}
	batch, ok := pm.onDemand[item.Group.RequestID]
	if !ok {
		pm.pollQueueErrorMsg("PollingItemCompleteNotification(): unknown on-demand request ", item.Group.RequestID)
		return false, false
	}
	batch.remaining--
	if !success {
		batch.failed = true
	}
	if batch.remaining > 0 {
		return false, batch.failed
	}
	delete(pm.onDemand, item.Group.RequestID)
	return true, batch.failed
}
