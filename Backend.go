/*
File Name:  Backend.go
Copyright:  2024 Hearthmesh Contributors

Backend wires the eight components into one constructed value: gossip
manager, router+outbox, overlay sender/proxy gate, and the scheduler driving
their background cadences. Adapted from the teacher's Peernet.go, which
played the same "one struct holds every subsystem, constructed once at
startup" role for the DHT/blockchain stack (§9 design note: model each
concern as a typed service value instead of a process-wide singleton).
*/

package meshcore

import (
	"context"
	"log"
	"time"

	"github.com/hearthmesh/meshcore/gossip"
	"github.com/hearthmesh/meshcore/mesh"
	"github.com/hearthmesh/meshcore/overlay"
	"github.com/hearthmesh/meshcore/peerid"
	"github.com/hearthmesh/meshcore/router"
	"github.com/hearthmesh/meshcore/store"
)

// Backend is the constructed, running core (§9: a typed service value, not
// a singleton).
type Backend struct {
	Config Config

	Transport mesh.Transport
	Gossip    *gossip.Manager
	Proxy     *overlay.ProxyGate
	Sender    *overlay.Sender
	Router    *router.Router
	Scheduler *Scheduler

	Verification *mesh.VerificationSessions

	ReadReceipts store.Ledger
	Bookmarks    store.Ledger

	readReceiptIDs map[string]bool
}

// Dependencies are the externally supplied collaborators Init needs: the
// concrete mesh radio driver, the relay dialer, the identity signer, and the
// favorites lookup. All are interfaces so tests can substitute fakes.
type Dependencies struct {
	Transport mesh.Transport
	Favorites router.FavoriteLookup
	Signer    overlay.Signer
	DialRelay overlay.DialRelayFunc // pass overlay.DialRelay for production use

	ReadReceiptsPath string // empty means in-memory only
	BookmarksPath    string
}

// Init constructs a Backend from cfg and deps but does not yet start any
// background task (see Connect).
func Init(cfg Config, deps Dependencies) (*Backend, error) {
	relayDir, err := overlay.LoadDefaultRelayDirectory()
	if err != nil {
		return nil, err
	}

	gate := overlay.NewProxyGate(!cfg.Policy.FailClosed)
	pool := overlay.NewCachingRelayPool(relayDir, deps.DialRelay, cfg.Overlay.RelayCountPerGeohash)
	sender := overlay.NewSender(gate, pool, deps.Signer)

	gossipMgr := gossip.NewManager(cfg.Bloom.MaxBytes, cfg.Bloom.TargetFpr)
	r := router.NewRouter(deps.Transport, sender, deps.Favorites)

	b := &Backend{
		Config:         cfg,
		Transport:      deps.Transport,
		Gossip:         gossipMgr,
		Proxy:          gate,
		Sender:         sender,
		Router:         r,
		Scheduler:      NewScheduler(),
		Verification:   mesh.NewVerificationSessions(mesh.DefaultChallengeTimeout),
		ReadReceipts:   ledgerOrMemory(deps.ReadReceiptsPath),
		Bookmarks:      ledgerOrMemory(deps.BookmarksPath),
		readReceiptIDs: make(map[string]bool),
	}

	if entries, err := b.ReadReceipts.Load(); err == nil {
		for _, id := range entries {
			b.readReceiptIDs[id] = true
		}
	}

	return b, nil
}

func ledgerOrMemory(path string) store.Ledger {
	if path == "" {
		return store.NewMemoryLedger()
	}
	return store.NewJSONLedger(path)
}

// Connect starts the background tasks (§9 "task scheduler"): the gossip
// timer and the verification-challenge sweep. Mesh events are not read here;
// the host passes each one to OnMeshEvent. Bootstrap polling and SOCKS probing
// are started separately by the host once it knows the proxy's control
// socket address, since those are proxy-process-lifecycle concerns outside
// this constructor's scope.
func (b *Backend) Connect(ctx context.Context) {
	period := time.Duration(b.Config.Gossip.PeriodSeconds) * time.Second
	if period <= 0 {
		period = gossip.DefaultPeriod
	}

	b.Scheduler.Start(ctx, TaskGossipTimer, func(ctx context.Context) {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pkt := b.Gossip.EmitSync(senderIDFromPeer(b.Transport.MyPeerID()), uint64(time.Now().UnixMilli()))
				signed, err := b.Transport.SignPacketForBroadcast(pkt)
				if err != nil {
					log.Printf("meshcore: sign gossip sync packet: %v", err)
					continue
				}
				_ = signed // the signed packet is dropped here: mesh.Transport has no method that transmits it
			}
		}
	})

	b.Scheduler.Start(ctx, TaskVerificationSweep, func(ctx context.Context) {
		ticker := time.NewTicker(mesh.DefaultChallengeTimeout)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.Verification.Sweep()
			}
		}
	})
}

// Disconnect tears down every background task (§9 "cancels them on
// teardown").
func (b *Backend) Disconnect() {
	b.Scheduler.StopAll()
}

// OnMeshEvent dispatches a single driver event into the gossip/router
// pipeline (§4.4, data flow "radio bytes -> packet decode -> seen-set gate
// -> router -> delivery to subscriber").
func (b *Backend) OnMeshEvent(ctx context.Context, ev mesh.Event) {
	switch ev.Kind {
	case mesh.EventPacketDecoded:
		if ev.Packet != nil {
			b.Gossip.OnPublicPacketSeen(ev.Packet)
		}
	case mesh.EventPeerAppeared:
		b.Scheduler.Start(ctx, "scheduled-sync:"+ev.Peer.String(), func(ctx context.Context) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(gossip.ScheduledSyncDelay):
			}
			pkt := b.Gossip.EmitSync(senderIDFromPeer(b.Transport.MyPeerID()), uint64(time.Now().UnixMilli()))
			if _, err := b.Transport.SignPacketForBroadcast(pkt); err != nil {
				log.Printf("meshcore: scheduled sync sign failed for %s: %v", ev.Peer, err)
			}
		})
		b.Router.OnPeerReachable(ctx, ev.Peer)
	case mesh.EventPeerDisappeared:
		b.Scheduler.Stop("scheduled-sync:" + ev.Peer.String())
	}
}

// MarkMessageRead records a message id as read in the persisted
// read-receipts ledger (§6 "Persisted state layout").
func (b *Backend) MarkMessageRead(messageID string) error {
	if b.readReceiptIDs[messageID] {
		return nil
	}
	b.readReceiptIDs[messageID] = true

	entries := make([]string, 0, len(b.readReceiptIDs))
	for id := range b.readReceiptIDs {
		entries = append(entries, id)
	}
	return b.ReadReceipts.Save(entries)
}

// HasReadMessage reports whether messageID was previously marked read.
func (b *Backend) HasReadMessage(messageID string) bool {
	return b.readReceiptIDs[messageID]
}

func senderIDFromPeer(p peerid.PeerID) (out [8]byte) {
	if p.Kind() == peerid.KindShort {
		return p.ShortBytes()
	}
	full := p.FullBytes()
	copy(out[:], full[:8])
	return out
}
