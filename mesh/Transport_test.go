package mesh

import (
	"errors"
	"testing"

	"github.com/hearthmesh/meshcore/peerid"
	"github.com/hearthmesh/meshcore/protocol"
)

// fakeTransport is a minimal stand-in used to exercise the interface shape
// and to let router/outbox tests (in other packages) depend on mesh.Transport
// without a real radio stack.
type fakeTransport struct {
	self      peerid.PeerID
	reachable map[string]bool
	connected map[string]bool
	sent      []string
}

func (f *fakeTransport) MyPeerID() peerid.PeerID { return f.self }

func (f *fakeTransport) IsPeerReachable(p peerid.PeerID) bool {
	return f.reachable[p.String()]
}

func (f *fakeTransport) IsPeerConnected(p peerid.PeerID) bool {
	return f.connected[p.String()]
}

func (f *fakeTransport) SendPrivateMessage(content string, to peerid.PeerID, nickname, messageID string) error {
	if !f.reachable[to.String()] {
		return errors.New("unreachable")
	}
	f.sent = append(f.sent, messageID)
	return nil
}

func (f *fakeTransport) SendReadReceipt(receipt string, to peerid.PeerID) error { return nil }
func (f *fakeTransport) SendDeliveryAck(messageID string, to peerid.PeerID) error { return nil }
func (f *fakeTransport) SendFavoriteNotification(to peerid.PeerID, isFavorite bool) error {
	return nil
}
func (f *fakeTransport) SendFileTransferTLV(payload []byte, recipient *peerid.PeerID, transferID, messageID string) error {
	return nil
}

func (f *fakeTransport) SignPacketForBroadcast(p *protocol.Packet) (*protocol.Packet, error) {
	signed := *p
	signed.Signature = []byte{0x01, 0x02}
	return &signed, nil
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		reachable: make(map[string]bool),
		connected: make(map[string]bool),
	}
}

func TestFakeTransportSatisfiesInterface(t *testing.T) {
	var _ Transport = newFakeTransport()
}

func TestSendPrivateMessageRequiresReachability(t *testing.T) {
	tr := newFakeTransport()
	to := peerid.ShortFromBytes([8]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})

	if err := tr.SendPrivateMessage("hi", to, "alice", "m1"); err == nil {
		t.Fatalf("expected error when peer is not reachable")
	}

	tr.reachable[to.String()] = true
	if err := tr.SendPrivateMessage("hi", to, "alice", "m1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.sent) != 1 || tr.sent[0] != "m1" {
		t.Fatalf("expected message m1 to be recorded as sent")
	}
}

func TestSignPacketForBroadcastAttachesSignature(t *testing.T) {
	tr := newFakeTransport()
	p := &protocol.Packet{Kind: protocol.KindBroadcastMessage}

	signed, err := tr.SignPacketForBroadcast(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signed.Signature) == 0 {
		t.Fatalf("expected a signature to be attached")
	}
	if len(p.Signature) != 0 {
		t.Fatalf("SignPacketForBroadcast must not mutate the input packet")
	}
}
