/*
File Name:  Events.go
Copyright:  2024 Hearthmesh Contributors

Events the radio driver emits upward into the router (§4.4). Modeled as a
closed sum type; no channel is provided here: the host hands each event to
meshcore's Backend.OnMeshEvent.
*/

package mesh

import (
	"github.com/hearthmesh/meshcore/peerid"
	"github.com/hearthmesh/meshcore/protocol"
)

// EventKind distinguishes the four events a driver may emit.
type EventKind int

const (
	EventPacketDecoded EventKind = iota
	EventPeerAppeared
	EventPeerDisappeared
	EventHandshakeCompleted
)

// Event is a single driver-emitted occurrence.
type Event struct {
	Kind   EventKind
	Peer   peerid.PeerID
	Packet *protocol.Packet // set only for EventPacketDecoded
}

// FragmentSize is the default max payload per radio fragment (§6 config).
const FragmentSize = 469

// TTLDefault is the default initial flood TTL (§6 config).
const TTLDefault = 7

// MaxInFlightAssemblies bounds concurrent fragment reassemblies. Fragment
// reassembly itself (per-sender/per-transfer id, timeout, max concurrent) is
// the driver's responsibility (spec.md §9 Open Questions); this constant is
// the contract value the driver must honor.
const MaxInFlightAssemblies = 128
