/*
File Name:  Idempotency.go
Copyright:  2024 Hearthmesh Contributors

Bounded ordered set of recently processed overlay event ids (§4.5.2
"Idempotency"), preventing double-delivery when the same event arrives over
two overlapping subscriptions. Grounded on the gossip manager's bounded FIFO
(gossip/Manager.go), the same eviction shape applied to plain id strings
instead of whole packets.
*/

package overlay

import "sync"

// DefaultIdempotencyCap is the bounded set size (§4.5.2).
const DefaultIdempotencyCap = 2000

// IdempotencySet deduplicates event ids across overlapping subscriptions.
type IdempotencySet struct {
	mu    sync.Mutex
	cap   int
	order []string
	seen  map[string]bool
}

// NewIdempotencySet creates a set with the given capacity.
func NewIdempotencySet(cap int) *IdempotencySet {
	if cap <= 0 {
		cap = DefaultIdempotencyCap
	}
	return &IdempotencySet{cap: cap, seen: make(map[string]bool)}
}

// MarkSeen records idHex as processed and reports whether it was already
// present (true means the caller should drop the event as a duplicate).
func (s *IdempotencySet) MarkSeen(idHex string) (alreadySeen bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen[idHex] {
		return true
	}

	if len(s.order) >= s.cap {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}

	s.order = append(s.order, idHex)
	s.seen[idHex] = true
	return false
}

// Len reports the current number of tracked ids.
func (s *IdempotencySet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
