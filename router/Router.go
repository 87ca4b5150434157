/*
File Name:  Router.go
Copyright:  2024 Hearthmesh Contributors

The decision core (§4.7): choose mesh, overlay, or the outbox for each
outgoing private message, and re-drive the outbox whenever a favorite
mapping appears or a peer becomes mesh-reachable. Grounded on the teacher's
contactArbitraryPeer-then-fallback pattern (Bootstrap.go tries direct
contact before falling back to broadcast discovery) generalized into the
mesh/overlay/outbox three-way table the spec requires.
*/

package router

import (
	"context"
	"errors"

	"github.com/hearthmesh/meshcore/mesh"
	"github.com/hearthmesh/meshcore/overlay"
	"github.com/hearthmesh/meshcore/peerid"
	"github.com/hearthmesh/meshcore/sanitize"
)

// ErrTransportUnavailable is returned when a send cannot be dispatched and
// also cannot be enqueued (§7 taxonomy); in practice the router always has
// the outbox as a fallback, so this is reserved for overlay-only receipts.
var ErrTransportUnavailable = errors.New("no transport available")

// FavoriteMapping is the overlay identity recorded for a mutual favorite.
type FavoriteMapping struct {
	OverlayPubkey [32]byte
	Present       bool
}

// FavoriteLookup resolves whether a peer has a mutual-favorite overlay
// mapping (§4.7: "recognized in either its 16-hex short form or 64-hex full
// form" — callers are expected to normalize peer forms before lookup).
type FavoriteLookup interface {
	Lookup(peer peerid.PeerID) FavoriteMapping
}

// FavoriteStatusChanged describes any favorites mapping change, including
// key-update events; the host passes it to Router.OnFavoriteStatusChanged
// (§4.7, §9 design note: a typed event value in place of the source's
// notification bus).
type FavoriteStatusChanged struct {
	Peer    peerid.PeerID
	Mapping FavoriteMapping
}

// Router is the message routing decision core.
type Router struct {
	transport  mesh.Transport
	sender     *overlay.Sender
	favorites  FavoriteLookup
	outbox     *Outbox
}

// NewRouter builds a router over the given mesh transport, overlay sender,
// and favorites lookup.
func NewRouter(transport mesh.Transport, sender *overlay.Sender, favorites FavoriteLookup) *Router {
	return &Router{
		transport: transport,
		sender:    sender,
		favorites: favorites,
		outbox:    NewOutbox(),
	}
}

// Outbox exposes the router's outbox for inspection (tests, diagnostics).
func (r *Router) Outbox() *Outbox { return r.outbox }

// SendPrivate routes a private message per the decision table (§4.7).
func (r *Router) SendPrivate(ctx context.Context, content string, to peerid.PeerID, nickname, messageID string) error {
	nickname = sanitize.Nickname(nickname)

	if r.transport.IsPeerReachable(to) {
		return r.transport.SendPrivateMessage(content, to, nickname, messageID)
	}

	mapping := r.favorites.Lookup(to)
	if mapping.Present {
		pubkey := mapping.OverlayPubkey
		_, err := r.sender.SendGeohashPM(ctx, overlayGeohashForPeer(to), content, &pubkey)
		return err
	}

	r.outbox.Enqueue(OutboxEntry{Peer: to, Content: content, RecipientNickname: nickname, MessageID: messageID})
	return nil
}

// FlushPeer re-applies the decision table to every queued entry for peer
// (§4.7 "Event-driven flush").
func (r *Router) FlushPeer(ctx context.Context, peer peerid.PeerID) {
	r.outbox.Flush(peer, func(entry OutboxEntry) error {
		if r.transport.IsPeerReachable(entry.Peer) {
			return r.transport.SendPrivateMessage(entry.Content, entry.Peer, entry.RecipientNickname, entry.MessageID)
		}

		mapping := r.favorites.Lookup(entry.Peer)
		if mapping.Present {
			pubkey := mapping.OverlayPubkey
			_, err := r.sender.SendGeohashPM(ctx, overlayGeohashForPeer(entry.Peer), entry.Content, &pubkey)
			return err
		}

		return errStillUnreachable
	})
}

var errStillUnreachable = errors.New("peer still unreachable")

// OnFavoriteStatusChanged handles the typed event the favorites store emits
// on any mapping change (§4.7, §9).
func (r *Router) OnFavoriteStatusChanged(ctx context.Context, ev FavoriteStatusChanged) {
	r.FlushPeer(ctx, ev.Peer)
}

// OnPeerReachable handles a mesh-reachability transition for peer (§4.7:
// "On mesh-reachability transitions for a peer, its outbox slice is
// flushed").
func (r *Router) OnPeerReachable(ctx context.Context, peer peerid.PeerID) {
	r.FlushPeer(ctx, peer)
}

// SendReceipt sends a READ or DELIVERED receipt, preferring mesh when
// reachable and falling back to overlay otherwise (§4.7 "Receipts").
func (r *Router) SendReceipt(ctx context.Context, kind ReceiptKind, messageID string, to peerid.PeerID) error {
	if r.transport.IsPeerReachable(to) {
		if kind == ReceiptRead {
			return r.transport.SendReadReceipt(messageID, to)
		}
		return r.transport.SendDeliveryAck(messageID, to)
	}

	mapping := r.favorites.Lookup(to)
	if !mapping.Present {
		return ErrTransportUnavailable
	}
	pubkey := mapping.OverlayPubkey
	_, err := r.sender.SendGeohashPM(ctx, overlayGeohashForPeer(to), receiptContent(kind, messageID), &pubkey)
	return err
}

// ReceiptKind distinguishes the two receipt sends (§4.7).
type ReceiptKind int

const (
	ReceiptDelivered ReceiptKind = iota
	ReceiptRead
)

func receiptContent(kind ReceiptKind, messageID string) string {
	if kind == ReceiptRead {
		return "read:" + messageID
	}
	return "delivered:" + messageID
}

// overlayGeohashForPeer resolves the geohash channel used for a peer's
// overlay direct messages. The source associates a default "home" geohash
// per contact (an application/UI concern, §1 Non-goals); here every peer maps
// to the fixed geohash "u4pruydqqvj", and no per-contact lookup is done.
var overlayGeohashForPeer = func(peer peerid.PeerID) string { return "u4pruydqqvj" }
