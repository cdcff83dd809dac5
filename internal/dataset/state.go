package dataset

import (
	"sync"
	"time"
)

// registryState holds the current snapshot and subscribers.
type registryState struct {
	mu sync.RWMutex

	current *Snapshot

	// Last successful load timestamp.
	lastSyncAt time.Time

	// Error from the most recent failed load, cleared on success.
	lastError error

	subscribers []chan Change
	closed      bool
}

func newState() *registryState {
	return &registryState{}
}

// snapshot returns the current snapshot (read-locked).
func (s *registryState) snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// swap installs a new snapshot and notifies subscribers (write-locked).
func (s *registryState) swap(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = snap
	s.lastSyncAt = snap.LoadedAt
	s.lastError = nil

	change := Change{
		LoadID:    snap.LoadID,
		LoadedAt:  snap.LoadedAt,
		Rows:      snap.Len(),
		Skipped:   snap.Skipped,
		Locations: len(snap.locations),
	}
	for _, ch := range s.subscribers {
		notify(ch, change)
	}
}

func (s *registryState) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

func (s *registryState) subscribe() <-chan Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Change, ChangeBufferSize)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *registryState) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
}

func (s *registryState) status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{LastSyncAt: s.lastSyncAt}
	if s.lastError != nil {
		st.LastError = s.lastError.Error()
	}
	if s.current != nil {
		st.Ready = true
		st.LoadID = s.current.LoadID.String()
		st.Rows = s.current.Len()
		st.Locations = len(s.current.locations)
		st.Vaccines = len(s.current.vaccines)
	}
	return st
}

// notify sends a change without blocking.
func notify(ch chan Change, change Change) {
	select {
	case ch <- change:
	default:
		// Channel full, drop oldest by consuming one and retrying.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- change:
		default:
		}
	}
}
