package pollqueue

import (
	"container/heap"
	"sync"
)

// PriorityPollQueue holds pending writes and on-demand reads, ordered by priority and then by arrival.
// It implements heap.Interface and is protected by a mutex.
type PriorityPollQueue struct {
	priorityQueue []*QueueItem
	mu            sync.Mutex
}

func (q *PriorityPollQueue) Len() int {
	return len(q.priorityQueue)
}

func (q *PriorityPollQueue) Less(i, j int) bool {
	a, b := q.priorityQueue[i], q.priorityQueue[j]
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.seq < b.seq
}

func (q *PriorityPollQueue) Swap(i, j int) {
	q.priorityQueue[i], q.priorityQueue[j] = q.priorityQueue[j], q.priorityQueue[i]
}

func (q *PriorityPollQueue) Push(x interface{}) {
	q.priorityQueue = append(q.priorityQueue, x.(*QueueItem))
}

func (q *PriorityPollQueue) Pop() interface{} {
	old := q.priorityQueue
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.priorityQueue = old[0 : n-1]
	return item
}

func (q *PriorityPollQueue) AddItem(item *QueueItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(q, item)
}

// GetNextItem pops the most urgent item, nil when empty.
func (q *PriorityPollQueue) GetNextItem() *QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*QueueItem)
}

func (q *PriorityPollQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.Len()
}

// RemoveByKind drops every item of kind and returns how many were removed.
func (q *PriorityPollQueue) RemoveByKind(kind ItemKind) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.priorityQueue[:0]
	removed := 0
	for _, item := range q.priorityQueue {
		if item.Kind == kind {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	for i := len(kept); i < len(q.priorityQueue); i++ {
		q.priorityQueue[i] = nil
	}
	q.priorityQueue = kept
	heap.Init(q)
	return removed
}

func (q *PriorityPollQueue) CountByPriority() map[Priority]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := map[Priority]int{}
	for _, item := range q.priorityQueue {
		out[item.Priority]++
	}
	return out
}

func (q *PriorityPollQueue) EmptyQueue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.priorityQueue = nil
}
