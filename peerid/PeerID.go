/*
File Name:  PeerID.go
Copyright:  2024 Hearthmesh Contributors

PeerId normalization (§3.1, §9 design note). The source lets PeerId be any
lowercase string and distinguishes kinds by length and content; here it is a
tagged variant produced by Parse or the byte constructors (ShortFromBytes,
FullFromBytes, ShortFromFull), so validation happens once instead of on every
hot-path comparison.
*/

package peerid

import (
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidPeerID is returned by Parse for anything that is not exactly one
// of the three recognized forms (§3.1).
var ErrInvalidPeerID = errors.New("invalid peer id")

// Kind distinguishes the three PeerID forms.
type Kind int

const (
	KindShort   Kind = iota // 16 hex chars, 8-byte digest of a static public key
	KindFull                // 64 hex chars, 32-byte full identity key
	KindOverlay             // "overlay:" namespaced form
)

const overlayPrefix = "overlay:"

// PeerID is the tagged variant of a peer identifier, built by Parse or the
// byte constructors. The zero value is the all-zero short id.
type PeerID struct {
	kind    Kind
	short   [8]byte
	full    [32]byte
	overlay string
}

// Parse normalizes and validates s into a PeerID.
func Parse(s string) (PeerID, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if strings.HasPrefix(s, overlayPrefix) {
		rest := strings.TrimPrefix(s, overlayPrefix)
		if rest == "" {
			return PeerID{}, ErrInvalidPeerID
		}
		return PeerID{kind: KindOverlay, overlay: rest}, nil
	}

	switch len(s) {
	case 16:
		b, err := hex.DecodeString(s)
		if err != nil || len(b) != 8 {
			return PeerID{}, ErrInvalidPeerID
		}
		var id PeerID
		id.kind = KindShort
		copy(id.short[:], b)
		return id, nil
	case 64:
		b, err := hex.DecodeString(s)
		if err != nil || len(b) != 32 {
			return PeerID{}, ErrInvalidPeerID
		}
		var id PeerID
		id.kind = KindFull
		copy(id.full[:], b)
		return id, nil
	default:
		return PeerID{}, ErrInvalidPeerID
	}
}

// ShortFromBytes builds a short-form PeerID directly from an 8-byte digest.
func ShortFromBytes(b [8]byte) PeerID {
	return PeerID{kind: KindShort, short: b}
}

// FullFromBytes builds a full-form PeerID directly from a 32-byte key.
func FullFromBytes(b [32]byte) PeerID {
	return PeerID{kind: KindFull, full: b}
}

// Kind reports which form this PeerID takes.
func (p PeerID) Kind() Kind { return p.kind }

// ShortBytes returns the 8-byte digest; only meaningful if Kind() == KindShort.
func (p PeerID) ShortBytes() [8]byte { return p.short }

// FullBytes returns the 32-byte key; only meaningful if Kind() == KindFull.
func (p PeerID) FullBytes() [32]byte { return p.full }

// String renders the canonical lowercase textual form.
func (p PeerID) String() string {
	switch p.kind {
	case KindShort:
		return hex.EncodeToString(p.short[:])
	case KindFull:
		return hex.EncodeToString(p.full[:])
	case KindOverlay:
		return overlayPrefix + p.overlay
	default:
		return ""
	}
}

// ShortFromFull derives the short routing id from a full identity key: the
// first 8 bytes of its digest (§3.1: "8-byte digest of a static public key").
// The caller supplies the digest function so this package stays free of any
// specific hash/crypto dependency (§1 Non-goals: cryptographic primitives are
// assumed, not implemented here).
func ShortFromFull(full [32]byte, digest func([]byte) [32]byte) PeerID {
	d := digest(full[:])
	var short [8]byte
	copy(short[:], d[:8])
	return PeerID{kind: KindShort, short: short}
}

// Equal reports whether two PeerIDs denote the same identity and form.
func (p PeerID) Equal(other PeerID) bool {
	if p.kind != other.kind {
		return false
	}
	switch p.kind {
	case KindShort:
		return p.short == other.short
	case KindFull:
		return p.full == other.full
	case KindOverlay:
		return p.overlay == other.overlay
	default:
		return false
	}
}
