package router

import (
	"context"
	"testing"

	"github.com/hearthmesh/meshcore/overlay"
	"github.com/hearthmesh/meshcore/peerid"
	"github.com/hearthmesh/meshcore/protocol"
)

type fakeMeshTransport struct {
	self      peerid.PeerID
	reachable map[string]bool
	sent      []string
}

func newFakeMeshTransport() *fakeMeshTransport {
	return &fakeMeshTransport{reachable: make(map[string]bool)}
}

func (f *fakeMeshTransport) MyPeerID() peerid.PeerID                         { return f.self }
func (f *fakeMeshTransport) IsPeerReachable(p peerid.PeerID) bool            { return f.reachable[p.String()] }
func (f *fakeMeshTransport) IsPeerConnected(p peerid.PeerID) bool            { return f.reachable[p.String()] }
func (f *fakeMeshTransport) SendPrivateMessage(content string, to peerid.PeerID, nickname, messageID string) error {
	f.sent = append(f.sent, messageID)
	return nil
}
func (f *fakeMeshTransport) SendReadReceipt(receipt string, to peerid.PeerID) error   { return nil }
func (f *fakeMeshTransport) SendDeliveryAck(messageID string, to peerid.PeerID) error { return nil }
func (f *fakeMeshTransport) SendFavoriteNotification(to peerid.PeerID, isFavorite bool) error {
	return nil
}
func (f *fakeMeshTransport) SendFileTransferTLV(payload []byte, recipient *peerid.PeerID, transferID, messageID string) error {
	return nil
}
func (f *fakeMeshTransport) SignPacketForBroadcast(p *protocol.Packet) (*protocol.Packet, error) {
	return p, nil
}

type fakeFavorites struct {
	mappings map[string]FavoriteMapping
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{mappings: make(map[string]FavoriteMapping)}
}

func (f *fakeFavorites) Lookup(peer peerid.PeerID) FavoriteMapping {
	return f.mappings[peer.String()]
}

type recordingRelayPool struct {
	clients []overlay.RelayClient
}

func (p *recordingRelayPool) ClientsForGeohash(ctx context.Context, geohash string) ([]overlay.RelayClient, error) {
	return p.clients, nil
}

type recordingRelayClient struct {
	published [][]byte
}

func (c *recordingRelayClient) Publish(ctx context.Context, raw []byte) error {
	c.published = append(c.published, raw)
	return nil
}
func (c *recordingRelayClient) Subscribe(ctx context.Context, subID string, filterJSON []byte) error {
	return nil
}
func (c *recordingRelayClient) Unsubscribe(subID string) error { return nil }
func (c *recordingRelayClient) Close() error                   { return nil }

type fakeSigner struct{}

func (fakeSigner) PubkeyForGeohash(geohash string) [32]byte   { return [32]byte{} }
func (fakeSigner) Sign(geohash string, message []byte) []byte { return []byte{0xAA} }

func testPeer(b byte) peerid.PeerID {
	var id [8]byte
	for i := range id {
		id[i] = b
	}
	return peerid.ShortFromBytes(id)
}

// TestOutboxFlushOnFavoriteMappingEvent is end-to-end scenario 4 from
// spec.md §8: an unreachable peer with no overlay mapping queues, then
// drains to exactly one overlay send once FavoriteStatusChanged fires.
func TestOutboxFlushOnFavoriteMappingEvent(t *testing.T) {
	transport := newFakeMeshTransport()
	favorites := newFakeFavorites()

	gate := overlay.NewProxyGate(false)
	gate.Advance(overlay.ProxyStarting)
	gate.Advance(overlay.ProxySocksUp)
	gate.RecordBootstrapProgress(100, "Done")

	relayClient := &recordingRelayClient{}
	pool := &recordingRelayPool{clients: []overlay.RelayClient{relayClient}}
	sender := overlay.NewSender(gate, pool, fakeSigner{})

	r := NewRouter(transport, sender, favorites)
	peer := testPeer(0x42)

	if err := r.SendPrivate(context.Background(), "hi", peer, "nick", "mid-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := r.Outbox().Entries(peer)
	if len(entries) != 1 || entries[0].Content != "hi" || entries[0].MessageID != "mid-1" {
		t.Fatalf("expected one queued outbox entry for the unreachable peer, got %+v", entries)
	}

	favorites.mappings[peer.String()] = FavoriteMapping{Present: true, OverlayPubkey: [32]byte{0x01}}
	r.OnFavoriteStatusChanged(context.Background(), FavoriteStatusChanged{
		Peer:    peer,
		Mapping: favorites.mappings[peer.String()],
	})

	if !r.Outbox().IsEmpty(peer) {
		t.Fatalf("expected outbox to be empty after the mapping event flush")
	}
	if len(relayClient.published) != 1 {
		t.Fatalf("expected exactly one overlay send to be observed, got %d", len(relayClient.published))
	}
}

func TestSendPrivatePrefersMeshWhenReachable(t *testing.T) {
	transport := newFakeMeshTransport()
	favorites := newFakeFavorites()
	gate := overlay.NewProxyGate(false)
	sender := overlay.NewSender(gate, &recordingRelayPool{}, fakeSigner{})

	r := NewRouter(transport, sender, favorites)
	peer := testPeer(0x01)
	transport.reachable[peer.String()] = true

	if err := r.SendPrivate(context.Background(), "hi", peer, "nick", "mid-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("expected the mesh transport to carry the reachable send")
	}
	if !r.Outbox().IsEmpty(peer) {
		t.Fatalf("expected no outbox entry when mesh-reachable")
	}
}

func TestOnPeerReachableFlushesQueuedEntries(t *testing.T) {
	transport := newFakeMeshTransport()
	favorites := newFakeFavorites()
	gate := overlay.NewProxyGate(false)
	sender := overlay.NewSender(gate, &recordingRelayPool{}, fakeSigner{})

	r := NewRouter(transport, sender, favorites)
	peer := testPeer(0x02)

	r.SendPrivate(context.Background(), "queued", peer, "nick", "mid-3")
	if r.Outbox().IsEmpty(peer) {
		t.Fatalf("expected the send to be queued while unreachable")
	}

	transport.reachable[peer.String()] = true
	r.OnPeerReachable(context.Background(), peer)

	if !r.Outbox().IsEmpty(peer) {
		t.Fatalf("expected the outbox to drain once the peer becomes mesh-reachable")
	}
	if len(transport.sent) != 1 {
		t.Fatalf("expected exactly one mesh send after the flush")
	}
}
