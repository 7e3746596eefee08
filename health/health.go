package health

import "sync"

type Status int

const (
	StatusUnknown Status = iota
	StatusOK
	StatusBad
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBad:
		return "bad"
	}
	return "unknown"
}

// Tracker keeps the per channel status. Transitions are edge triggered: MarkBad and MarkOK only return the
// ids whose status actually changed, so callers report each change once.
type Tracker struct {
	mu      sync.Mutex
	catalog map[string]struct{}
	status  map[string]Status
}

func NewTracker(ids []string) *Tracker {
	t := &Tracker{}
	t.Reset(ids)
	return t
}

// Reset replaces the catalog; every channel starts unknown.
func (t *Tracker) Reset(ids []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.catalog = make(map[string]struct{}, len(ids))
	t.status = make(map[string]Status, len(ids))
	for _, id := range ids {
		t.catalog[id] = struct{}{}
	}
}

// MarkBad flips ids to bad and returns those that were not bad already.
func (t *Tracker) MarkBad(ids ...string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var changed []string
	for _, id := range ids {
		if t.status[id] == StatusBad {
			continue
		}
		t.status[id] = StatusBad
		changed = append(changed, id)
	}
	return changed
}

// MarkOK flips ids to ok and returns those that were bad before.
func (t *Tracker) MarkOK(ids ...string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var recovered []string
	for _, id := range ids {
		if t.status[id] == StatusBad {
			recovered = append(recovered, id)
		}
		t.status[id] = StatusOK
	}
	return recovered
}

func (t *Tracker) Status(id string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status[id]
}

func (t *Tracker) IsBad(id string) bool {
	return t.Status(id) == StatusBad
}

// AllBad reports whether every catalog channel is bad. An empty catalog is never all bad.
func (t *Tracker) AllBad() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.catalog) == 0 {
		return false
	}
	for id := range t.catalog {
		if t.status[id] != StatusBad {
			return false
		}
	}
	return true
}

func (t *Tracker) Counts() map[Status]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := map[Status]int{}
	for id := range t.catalog {
		out[t.status[id]]++
	}
	return out
}
