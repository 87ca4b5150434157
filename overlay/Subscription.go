/*
File Name:  Subscription.go
Copyright:  2024 Hearthmesh Contributors

Overlay subscriber state (§5 "single-threaded cooperative main context for
... overlay subscriber state"): which geohash channels are currently
subscribed to, across which relay clients, and the idempotency set that
gates delivery of incoming events to the caller. Grounded on the teacher's
connection-bookkeeping pattern of holding one entry per active session
(Connection.go), generalized here to one entry per (geohash, relay) pair.
Subscription ids are random per the relay wire contract's free-form REQ id
(§1 Non-goals: the subscription protocol itself is an external collaborator);
google/uuid is the teacher's id-generation dependency for exactly this shape
of opaque client-chosen identifier.
*/

package overlay

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// subscription tracks one outstanding REQ against one relay client.
type subscription struct {
	geohash string
	client  RelayClient
	subID   string
}

// Subscriptions owns the set of active geohash-channel subscriptions and the
// idempotency set gating delivery of events received on them.
type Subscriptions struct {
	mu   sync.Mutex
	subs map[string]*subscription // subID -> subscription

	idempotency *IdempotencySet
}

// NewSubscriptions creates an empty subscription tracker with the given
// idempotency cap (pass DefaultIdempotencyCap for production use).
func NewSubscriptions(idempotencyCap int) *Subscriptions {
	return &Subscriptions{
		subs:        make(map[string]*subscription),
		idempotency: NewIdempotencySet(idempotencyCap),
	}
}

// SubscribeGeohash opens a subscription against client for geohash, returning
// the generated subscription id.
func (s *Subscriptions) SubscribeGeohash(ctx context.Context, geohash string, client RelayClient, filterJSON []byte) (string, error) {
	subID := uuid.NewString()
	if err := client.Subscribe(ctx, subID, filterJSON); err != nil {
		return "", err
	}

	s.mu.Lock()
	s.subs[subID] = &subscription{geohash: geohash, client: client, subID: subID}
	s.mu.Unlock()

	return subID, nil
}

// Unsubscribe closes subID, if active.
func (s *Subscriptions) Unsubscribe(subID string) error {
	s.mu.Lock()
	sub, ok := s.subs[subID]
	if ok {
		delete(s.subs, subID)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	return sub.client.Unsubscribe(subID)
}

// UnsubscribeGeohash closes every active subscription for geohash (used when
// the user leaves a channel).
func (s *Subscriptions) UnsubscribeGeohash(geohash string) {
	s.mu.Lock()
	var toClose []*subscription
	for id, sub := range s.subs {
		if sub.geohash == geohash {
			toClose = append(toClose, sub)
			delete(s.subs, id)
		}
	}
	s.mu.Unlock()

	for _, sub := range toClose {
		sub.client.Unsubscribe(sub.subID)
	}
}

// AcceptEvent reports whether an incoming event id should be delivered to the
// caller: true the first time idHex is seen, false on any replay (§4.5
// idempotency, cap via IdempotencySet).
func (s *Subscriptions) AcceptEvent(idHex string) bool {
	return !s.idempotency.MarkSeen(idHex)
}

// Active reports the number of open subscriptions (test/introspection use).
func (s *Subscriptions) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
