/*
File Name:  Sender.go
Copyright:  2024 Hearthmesh Contributors

Overlay send operations (§4.5.2 "Overlay transport operations"): public
geohash posts (PoW-mined, signed per-geohash) and gift-wrapped direct
messages. There is no separate delivery/read ack operation and the ack event
kinds are not used: the router sends receipts as gift-wrapped direct
messages. Every path checks ProxyGate.NetworkPermitted first —
the fail-closed invariant (§4.5.1, §8 scenario 5).
*/

package overlay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hearthmesh/meshcore/pow"
	"github.com/hearthmesh/meshcore/protocol"
)

// ErrPayloadTooLarge is returned when a content string exceeds the overlay
// transport's practical frame budget (§7 taxonomy).
var ErrPayloadTooLarge = errors.New("overlay payload too large")

// MaxOverlayContentBytes bounds public post and DM content size.
const MaxOverlayContentBytes = 64 * 1024

// Signer derives an overlay identity keypair for a given geohash and signs
// arbitrary bytes with it (§4.5.2: "signed with an overlay identity derived
// per-geohash"). The concrete signature scheme is an external collaborator
// (§1 Non-goals); PubkeyForGeohash returns the 32-byte x-only pubkey and Sign
// returns whatever signature bytes the identity scheme produces.
type Signer interface {
	PubkeyForGeohash(geohash string) [32]byte
	Sign(geohash string, message []byte) []byte
}

// RelayPool resolves a geohash to a set of already-connected relay clients,
// dialing and caching as needed (§4.5.2 "Relay selection").
type RelayPool interface {
	ClientsForGeohash(ctx context.Context, geohash string) ([]RelayClient, error)
}

// Sender performs gated overlay sends.
type Sender struct {
	gate      *ProxyGate
	pool      RelayPool
	signer    Signer
	idem      *IdempotencySet
	relayFanN int
}

// NewSender builds a Sender over the given gate, relay pool, and signer.
func NewSender(gate *ProxyGate, pool RelayPool, signer Signer) *Sender {
	return &Sender{
		gate:      gate,
		pool:      pool,
		signer:    signer,
		idem:      NewIdempotencySet(DefaultIdempotencyCap),
		relayFanN: DefaultRelayCount,
	}
}

// SendGeohashPublicPost mines and publishes a public textNote event tagged
// with the geohash (§4.5.2, §4.6). Returns ErrProxyNotReady if fail-closed.
func (s *Sender) SendGeohashPublicPost(ctx context.Context, geohash, content, nickname string) (idHex string, err error) {
	if !s.gate.NetworkPermitted() {
		return "", ErrProxyNotReady
	}
	if len(content) > MaxOverlayContentBytes {
		return "", ErrPayloadTooLarge
	}

	pubkey := s.signer.PubkeyForGeohash(geohash)
	pubkeyHex := fmt.Sprintf("%x", pubkey[:])

	tags := [][]string{{"g", geohash}}
	if nickname != "" {
		tags = append(tags, []string{"n", nickname})
	}

	createdAt := uint64(time.Now().Unix())
	targetBits := pow.RequiredBits(geohash)

	nonce, minedIDHex := pow.Mine(pubkeyHex, createdAt, protocol.OverlayKindTextNote, tags, content, targetBits)
	tags = append(tags, pow.NonceTag(nonce, targetBits))

	sig := s.signer.Sign(geohash, []byte(minedIDHex))

	frame, err := encodeEventFrame(pubkeyHex, createdAt, protocol.OverlayKindTextNote, tags, content, minedIDHex, sig)
	if err != nil {
		return "", err
	}

	clients, err := s.pool.ClientsForGeohash(ctx, geohash)
	if err != nil {
		return "", err
	}
	for _, c := range clients {
		if err := c.Publish(ctx, frame); err != nil {
			return "", err
		}
	}

	s.idem.MarkSeen(minedIDHex)
	return minedIDHex, nil
}

// SendGeohashPM sends a gift-wrapped direct message at a geohash (§4.5.2
// "Gift wrap"). Gated by the same fail-closed check as public posts.
func (s *Sender) SendGeohashPM(ctx context.Context, geohash, content string, recipientKey *[32]byte) (idHex string, err error) {
	if !s.gate.NetworkPermitted() {
		return "", ErrProxyNotReady
	}
	if len(content) > MaxOverlayContentBytes {
		return "", ErrPayloadTooLarge
	}

	sealed, err := SealGiftWrap([]byte(content), recipientKey)
	if err != nil {
		return "", err
	}

	pubkey := s.signer.PubkeyForGeohash(geohash)
	pubkeyHex := fmt.Sprintf("%x", pubkey[:])
	createdAt := uint64(time.Now().Unix())
	tags := [][]string{{"g", geohash}}

	id := protocol.ComputeEventID(pubkeyHex, createdAt, protocol.OverlayKindGiftWrap, tags, string(sealed))
	idHex = fmt.Sprintf("%x", id[:])
	sig := s.signer.Sign(geohash, id[:])

	frame, err := encodeEventFrame(pubkeyHex, createdAt, protocol.OverlayKindGiftWrap, tags, string(sealed), idHex, sig)
	if err != nil {
		return "", err
	}

	clients, err := s.pool.ClientsForGeohash(ctx, geohash)
	if err != nil {
		return "", err
	}
	for _, c := range clients {
		if err := c.Publish(ctx, frame); err != nil {
			return "", err
		}
	}

	return idHex, nil
}

// eventFrame is the wire shape published to relays: a 6-tuple plus id and
// signature, distinct from the id-hashing tuple in
// protocol.CanonicalSerialization (which excludes id/signature by
// definition).
type eventFrame struct {
	Pubkey    string     `json:"pubkey"`
	CreatedAt uint64     `json:"created_at"`
	Kind      uint16     `json:"kind"`
	Tags      [][]string `json:"tags"`
	Content   string     `json:"content"`
	ID        string     `json:"id"`
	Sig       string     `json:"sig"`
}

func encodeEventFrame(pubkeyHex string, createdAt uint64, kind uint16, tags [][]string, content, idHex string, sig []byte) ([]byte, error) {
	ev := eventFrame{
		Pubkey:    pubkeyHex,
		CreatedAt: createdAt,
		Kind:      kind,
		Tags:      tags,
		Content:   content,
		ID:        idHex,
		Sig:       fmt.Sprintf("%x", sig),
	}
	return json.Marshal(ev)
}
