package mesh

import (
	"testing"

	"github.com/hearthmesh/meshcore/peerid"
	"github.com/hearthmesh/meshcore/protocol"
)

func TestEventCarriesPacketOnlyForDecodedKind(t *testing.T) {
	p := &protocol.Packet{Kind: protocol.KindBroadcastMessage}
	peer := peerid.ShortFromBytes([8]byte{1, 2, 3, 4, 5, 6, 7, 8})

	decoded := Event{Kind: EventPacketDecoded, Peer: peer, Packet: p}
	if decoded.Packet == nil {
		t.Fatalf("expected packet to be set on EventPacketDecoded")
	}

	appeared := Event{Kind: EventPeerAppeared, Peer: peer}
	if appeared.Packet != nil {
		t.Fatalf("EventPeerAppeared should carry no packet")
	}
}

func TestEventKindsAreDistinct(t *testing.T) {
	kinds := []EventKind{EventPacketDecoded, EventPeerAppeared, EventPeerDisappeared, EventHandshakeCompleted}
	seen := make(map[EventKind]bool)
	for _, k := range kinds {
		if seen[k] {
			t.Fatalf("duplicate EventKind value %d", k)
		}
		seen[k] = true
	}
}

func TestFragmentAndTTLDefaults(t *testing.T) {
	if FragmentSize != 469 {
		t.Fatalf("FragmentSize changed: got %d", FragmentSize)
	}
	if TTLDefault != 7 {
		t.Fatalf("TTLDefault changed: got %d", TTLDefault)
	}
	if MaxInFlightAssemblies <= 0 {
		t.Fatalf("MaxInFlightAssemblies must be positive")
	}
}
