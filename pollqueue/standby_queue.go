package pollqueue

import "sync"

// StandbyPollQueue holds the poll groups still waiting their turn in the current pass, in plan order.
// It is a plain FIFO protected by a mutex.
type StandbyPollQueue struct {
	queue []*PollGroup
	mu    sync.Mutex
}

func (q *StandbyPollQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

func (q *StandbyPollQueue) AddPollGroup(g *PollGroup) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, g)
}

func (q *StandbyPollQueue) GetNextPollGroup() *PollGroup {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == 0 {
		return nil
	}
	g := q.queue[0]
	q.queue[0] = nil
	q.queue = q.queue[1:]
	return g
}

func (q *StandbyPollQueue) EmptyQueue() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = nil
}
