/*
File Name:  Kind.go
Copyright:  2024 Hearthmesh Contributors

Packet kind registry shared by every peer. Mesh packet kinds are uint8 values
(used by the Packet codec); overlay event kinds are a separate uint16
registry (used by OverlayEvent.Kind).
*/

package protocol

// Packet kinds carried in Packet.Kind (§3.1, §4.1).
const (
	KindAnnounce              uint8 = 0x01 // presence + identity material
	KindBroadcastMessage      uint8 = 0x02 // chat message without a specific recipient
	KindPrivateMessage        uint8 = 0x03 // chat message to a specific recipient
	KindReadReceipt           uint8 = 0x04
	KindDeliveryAck           uint8 = 0x05
	KindFavoriteNotification  uint8 = 0x06
	KindFileTransfer          uint8 = 0x07 // FilePacket TLV payload
	KindRequestSync           uint8 = 0x08 // REQUEST_SYNC, carries a SyncRequest TLV payload
	KindVerificationChallenge uint8 = 0x09
	KindVerificationResponse  uint8 = 0x0A
)

// Overlay event kinds carried in OverlayEvent.Kind (§4.5.2).
const (
	OverlayKindTextNote    uint16 = 1 // public geohash post
	OverlayKindGiftWrap    uint16 = 2 // encrypted direct message envelope
	OverlayKindDeliveryAck uint16 = 3
	OverlayKindReadAck     uint16 = 4
)

// PacketFlag bits (§4.1, packet layout's flags byte).
const (
	FlagHasRecipient byte = 1 << 0
	FlagHasSignature byte = 1 << 1
)
