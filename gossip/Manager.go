/*
File Name:  Manager.go
Copyright:  2024 Hearthmesh Contributors

Anti-entropy gossip/sync manager (§4.3). Owns the bounded broadcast-message
FIFO, the latest-announcement-per-sender map, and the seen-set Bloom filter.
Emission and serving are pure/synchronous; the caller (meshcore.Scheduler)
drives the 30s cadence and dispatches the packets this package produces, per
the single-threaded-cooperative-main-context model (§5).
*/

package gossip

import (
	"sync"
	"time"

	"github.com/hearthmesh/meshcore/bloom"
	"github.com/hearthmesh/meshcore/peerid"
	"github.com/hearthmesh/meshcore/protocol"
)

// DefaultMessageCap is the bounded broadcast FIFO capacity (§4.3).
const DefaultMessageCap = 100

// DefaultPeriod is the REQUEST_SYNC emission cadence (§4.3, §6).
const DefaultPeriod = 30 * time.Second

// ScheduledSyncDelay is how long after a peer first appears its dedicated
// sync is emitted (§4.3).
const ScheduledSyncDelay = 5 * time.Second

type entry struct {
	fingerprint protocol.Fingerprint
	packet      *protocol.Packet
}

// Manager implements the anti-entropy engine.
type Manager struct {
	mu sync.Mutex

	cap      int
	messages []entry          // insertion-ordered FIFO of broadcast messages
	order    []string         // fingerprint hex in insertion order, mirrors messages
	byFP     map[string]bool  // fast membership test for messages already stored

	latest map[string]entry // senderIDHex -> latest announcement

	seen *bloom.Filter
}

// NewManager creates a gossip manager with the given Bloom filter budget.
func NewManager(bloomMaxBytes int, bloomFPR float64) *Manager {
	return &Manager{
		cap:    DefaultMessageCap,
		byFP:   make(map[string]bool),
		latest: make(map[string]entry),
		seen:   bloom.New(bloomMaxBytes, bloomFPR),
	}
}

// OnPublicPacketSeen ingests a broadcast or announce packet. Other kinds are
// ignored (§4.3 "Ingestion").
func (m *Manager) OnPublicPacketSeen(p *protocol.Packet) {
	if p.Kind != protocol.KindBroadcastMessage && p.Kind != protocol.KindAnnounce {
		return
	}

	fp := protocol.ComputeFingerprint(p)
	var fpArr [16]byte = fp
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seen.Add(fpArr)

	switch p.Kind {
	case protocol.KindAnnounce:
		senderHex := hexSenderID(p.SenderID)
		m.latest[senderHex] = entry{fingerprint: fp, packet: p}

	case protocol.KindBroadcastMessage:
		fpHex := fp.Hex()
		if m.byFP[fpHex] {
			return
		}
		if len(m.order) >= m.cap {
			oldest := m.order[0]
			m.order = m.order[1:]
			delete(m.byFP, oldest)
		}
		m.order = append(m.order, fpHex)
		m.byFP[fpHex] = true
		m.messages = append(m.messages, entry{fingerprint: fp, packet: p})
		if len(m.messages) > m.cap {
			m.messages = m.messages[len(m.messages)-m.cap:]
		}
	}
}

// EmitSync builds the periodic REQUEST_SYNC packet carrying the active Bloom
// snapshot, with ttl=0 so neighbors do not re-flood it (§4.3).
func (m *Manager) EmitSync(senderID [protocol.SenderIDSize]byte, timestampMs uint64) *protocol.Packet {
	m.mu.Lock()
	snap := m.seen.Snapshot()
	m.mu.Unlock()

	payload := protocol.EncodeSyncRequest(&protocol.SyncRequest{
		MBytes: snap.MBytes,
		K:      snap.K,
		Bits:   snap.Bits,
	})

	return &protocol.Packet{
		Kind:        protocol.KindRequestSync,
		SenderID:    senderID,
		TimestampMs: timestampMs,
		TTL:         0,
		Payload:     payload,
	}
}

// ServeSyncRequest answers a peer's REQUEST_SYNC: announcements first, then
// broadcasts in original insertion order, each cloned with ttl=0 (§4.3
// "Serving REQUEST_SYNC").
func (m *Manager) ServeSyncRequest(req *protocol.SyncRequest) (toSend []*protocol.Packet) {
	snap := bloom.Snapshot{MBytes: req.MBytes, K: req.K, Bits: req.Bits}
	mightContain := bloom.MembershipFromSnapshot(snap)

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.latest {
		var fp [16]byte = e.fingerprint
		if !mightContain(fp) {
			toSend = append(toSend, cloneWithTTLZero(e.packet))
		}
	}

	for _, fpHex := range m.order {
		idx := indexByFingerprintHex(m.messages, fpHex)
		if idx < 0 {
			continue
		}
		e := m.messages[idx]
		var fp [16]byte = e.fingerprint
		if !mightContain(fp) {
			toSend = append(toSend, cloneWithTTLZero(e.packet))
		}
	}

	return toSend
}

// PeerAppeared marks when a peer should receive its one-off scheduled sync.
// It records nothing; the caller (scheduler) calls EmitSync after
// ScheduledSyncDelay elapses, which builds a broadcast packet with no
// recipient; this package only exposes the constant.
func (m *Manager) PeerAppeared(peer peerid.PeerID) {
	_ = peer // presence is tracked by the router/scheduler, not the gossip manager
}

// Wipe clears all gossip state (used by the panic/emergency wipe operation, §7).
func (m *Manager) Wipe(bloomMaxBytes int, bloomFPR float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = nil
	m.order = nil
	m.byFP = make(map[string]bool)
	m.latest = make(map[string]entry)
	m.seen = bloom.New(bloomMaxBytes, bloomFPR)
}

func cloneWithTTLZero(p *protocol.Packet) *protocol.Packet {
	clone := *p
	clone.TTL = 0
	return &clone
}

func indexByFingerprintHex(messages []entry, fpHex string) int {
	for i, e := range messages {
		if e.fingerprint.Hex() == fpHex {
			return i
		}
	}
	return -1
}

func hexSenderID(id [protocol.SenderIDSize]byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(id)*2)
	for i, b := range id {
		out[i*2] = hexdigits[b>>4]
		out[i*2+1] = hexdigits[b&0x0f]
	}
	return string(out)
}
