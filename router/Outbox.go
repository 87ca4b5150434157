/*
File Name:  Outbox.go
Copyright:  2024 Hearthmesh Contributors

Per-peer FIFO outbox (§3.1 OutboxEntry, §4.7). Grounded on the gossip
manager's bounded FIFO shape (gossip/Manager.go), here unbounded per the
spec's "survives process lifetime but not restart" note (outbox.capPerPeer
is loaded into Config but not enforced: neither this type nor the router
limits entries per peer).
*/

package router

import (
	"sync"

	"github.com/hearthmesh/meshcore/peerid"
)

// OutboxEntry is a single queued private-message send (§3.1).
type OutboxEntry struct {
	Peer               peerid.PeerID
	Content            string
	RecipientNickname  string
	MessageID          string
}

// Outbox is the router's exclusive queue of undeliverable sends (§4.7
// "Ownership").
type Outbox struct {
	mu      sync.Mutex
	queues  map[string][]OutboxEntry
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{queues: make(map[string][]OutboxEntry)}
}

// Enqueue appends entry to peer's FIFO.
func (o *Outbox) Enqueue(entry OutboxEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := entry.Peer.String()
	o.queues[key] = append(o.queues[key], entry)
}

// Entries returns a snapshot copy of peer's pending entries.
func (o *Outbox) Entries(peer peerid.PeerID) []OutboxEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.queues[peer.String()]
	out := make([]OutboxEntry, len(q))
	copy(out, q)
	return out
}

// Flush drains peer's queue, attempting send(entry) for each in FIFO order.
// Entries for which send returns an error are kept in place, preserving
// order (§4.7 "entries that still can't be sent are kept in place").
func (o *Outbox) Flush(peer peerid.PeerID, send func(OutboxEntry) error) {
	o.mu.Lock()
	key := peer.String()
	pending := o.queues[key]
	o.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	var remaining []OutboxEntry
	for _, entry := range pending {
		if err := send(entry); err != nil {
			remaining = append(remaining, entry)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if len(remaining) == 0 {
		delete(o.queues, key)
	} else {
		o.queues[key] = remaining
	}
}

// IsEmpty reports whether peer has no pending entries.
func (o *Outbox) IsEmpty(peer peerid.PeerID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queues[peer.String()]) == 0
}

// Wipe clears every peer's queue (panic/emergency wipe, §7).
func (o *Outbox) Wipe() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queues = make(map[string][]OutboxEntry)
}
