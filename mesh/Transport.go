/*
File Name:  Transport.go
Copyright:  2024 Hearthmesh Contributors

The contract the BLE radio driver satisfies and the router consumes (§4.4).
The driver itself (the radio stack) is an external collaborator per §1
Non-goals; this package only fixes the interface shape.
*/

package mesh

import (
	"github.com/hearthmesh/meshcore/peerid"
	"github.com/hearthmesh/meshcore/protocol"
)

// Transport is the capability set a mesh (Bluetooth) radio driver exposes.
type Transport interface {
	// MyPeerID is stable for the process lifetime.
	MyPeerID() peerid.PeerID

	// IsPeerReachable reports mesh-connected or multi-hop reachability within
	// the current flood horizon.
	IsPeerReachable(peer peerid.PeerID) bool

	// IsPeerConnected reports a direct link.
	IsPeerConnected(peer peerid.PeerID) bool

	// SendPrivateMessage initiates a handshake if needed and queues internally.
	SendPrivateMessage(content string, to peerid.PeerID, nickname, messageID string) error

	SendReadReceipt(receipt string, to peerid.PeerID) error
	SendDeliveryAck(messageID string, to peerid.PeerID) error
	SendFavoriteNotification(to peerid.PeerID, isFavorite bool) error

	// SendFileTransferTLV sends a FilePacket TLV payload. recipient == nil
	// means broadcast.
	SendFileTransferTLV(payload []byte, recipient *peerid.PeerID, transferID, messageID string) error

	// SignPacketForBroadcast attaches the sender's signature to a packet
	// destined for the flooded mesh.
	SignPacketForBroadcast(p *protocol.Packet) (*protocol.Packet, error)
}
