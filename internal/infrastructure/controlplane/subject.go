package controlplane

import "sync"

// stateSubject is a behaviour subject holding the most recent
// ControlPlaneState (spec.md §4.8): new subscribers receive the
// current value immediately, subsequent updates are pushed in arrival
// order, and every publish increments a monotonic counter (Invariant
// I6).
type stateSubject struct {
	mu          sync.Mutex
	current     ControlPlaneState
	hasValue    bool
	updateCount uint64
	subscribers map[int]chan ControlPlaneState
	nextID      int
}

func newStateSubject() *stateSubject {
	return &stateSubject{subscribers: make(map[int]chan ControlPlaneState)}
}

// Publish stores state as current, increments the update count, and
// pushes it to every subscriber. Subscriber channels are buffered by 1
// and drop the prior unread value on overflow — subscribers only ever
// care about the latest state, not every intermediate one.
func (s *stateSubject) Publish(state ControlPlaneState) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = state
	s.hasValue = true
	s.updateCount++
	for _, ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return s.updateCount
}

// UpdateCount reports how many updates have been published.
func (s *stateSubject) UpdateCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCount
}

// Subscribe registers a new subscriber, delivering the current value
// immediately if one has been published, and returns the channel plus
// an unsubscribe function.
func (s *stateSubject) Subscribe() (<-chan ControlPlaneState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan ControlPlaneState, 1)
	if s.hasValue {
		ch <- s.current
	}
	s.subscribers[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
	return ch, unsubscribe
}
