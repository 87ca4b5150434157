/*
File Name:  VerificationSession.go
Copyright:  2024 Hearthmesh Contributors

Pending-challenge tracking for the verification handshake (protocol.Verification,
KindVerificationChallenge/KindVerificationResponse). Adapted from the
teacher's SequenceManager (protocol/Sequence.go), which matched outgoing
requests to incoming replies by (peer, sequence number) with expiry; here the
key is (peer, nonce) and there is no btcec-typed identity or expiry goroutine
of its own — Sweep is called by a named scheduler task, which runs as a
goroutine the scheduler cancels on teardown, so the map is mutex-guarded.
*/

package mesh

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/hearthmesh/meshcore/peerid"
)

// DefaultChallengeTimeout is how long a verification challenge remains valid
// awaiting a response (§4.5.1's 3s control-command timeout is the closest
// comparable budget in spec; this module picks a slightly larger handshake
// window since it crosses the mesh radio, not a loopback control socket).
const DefaultChallengeTimeout = 10 * time.Second

type pendingChallenge struct {
	peer    peerid.PeerID
	expires time.Time
}

// VerificationSessions tracks outstanding verification challenges this peer
// issued, so an incoming KindVerificationResponse can be matched back to it.
type VerificationSessions struct {
	mu      sync.Mutex
	timeout time.Duration
	pending map[string]pendingChallenge // key: peerID string + nonce hex
}

// NewVerificationSessions creates a tracker with the given per-challenge
// timeout (use DefaultChallengeTimeout unless a test needs otherwise).
func NewVerificationSessions(timeout time.Duration) *VerificationSessions {
	if timeout <= 0 {
		timeout = DefaultChallengeTimeout
	}
	return &VerificationSessions{timeout: timeout, pending: make(map[string]pendingChallenge)}
}

func sessionKey(peer peerid.PeerID, nonce []byte) string {
	return peer.String() + ":" + hex.EncodeToString(nonce)
}

// IssueChallenge registers a challenge sent to peer with the given nonce.
func (v *VerificationSessions) IssueChallenge(peer peerid.PeerID, nonce []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending[sessionKey(peer, nonce)] = pendingChallenge{peer: peer, expires: time.Now().Add(v.timeout)}
}

// ResolveResponse reports whether (peer, nonce) matches an outstanding,
// unexpired challenge, consuming it either way if found.
func (v *VerificationSessions) ResolveResponse(peer peerid.PeerID, nonce []byte) (valid bool) {
	key := sessionKey(peer, nonce)

	v.mu.Lock()
	defer v.mu.Unlock()

	challenge, ok := v.pending[key]
	if !ok {
		return false
	}
	delete(v.pending, key)

	return time.Now().Before(challenge.expires)
}

// Sweep drops expired challenges. Called periodically from the scheduler's
// verification-sweep task goroutine, under the same mutex as the other methods.
func (v *VerificationSessions) Sweep() {
	now := time.Now()

	v.mu.Lock()
	defer v.mu.Unlock()
	for key, challenge := range v.pending {
		if now.After(challenge.expires) {
			delete(v.pending, key)
		}
	}
}

// Pending returns the count of outstanding (possibly expired, pre-sweep)
// challenges, mostly useful for tests and diagnostics.
func (v *VerificationSessions) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending)
}
