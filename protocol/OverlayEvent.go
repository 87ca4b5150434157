/*
File Name:  OverlayEvent.go
Copyright:  2024 Hearthmesh Contributors

OverlayEvent canonical serialization and id computation (§4.1, §6): the JSON
array `[0, pubkeyHex, createdAt, kind, tags, content]`, with no escaped
forward slashes, SHA-256 hashed to produce the 32-byte id. This is the exact
byte sequence the PoW miner (package pow) iterates over, so the encoding must
be byte-for-byte stable for a fixed nonce tag.

SHA-256 (not the teacher's blake3) is used here because the spec fixes it as
the bit-exact wire algorithm for this one value (§6); the mesh packet
fingerprint uses blake3 as the teacher does, and the Bloom filter uses
FNV-style folds.
*/

package protocol

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// OverlayEvent is the relay-transport event envelope (§3.1).
type OverlayEvent struct {
	Pubkey    [32]byte // x-only pubkey
	CreatedAt uint64   // unix seconds
	Kind      uint16
	Tags      [][]string
	Content   string
	Nonce     uint64
	ID        [32]byte // sha256 of the canonical serialization
}

// CanonicalSerialization returns the exact bytes hashed to produce the id.
func CanonicalSerialization(pubkeyHex string, createdAt uint64, kind uint16, tags [][]string, content string) []byte {
	if tags == nil {
		tags = [][]string{}
	}

	arr := []interface{}{0, pubkeyHex, createdAt, kind, tags, content}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoder.Encode appends a trailing newline; the canonical form has none.
	if err := enc.Encode(arr); err != nil {
		panic("protocol: canonical serialization: " + err.Error())
	}

	out := buf.Bytes()
	return bytes.TrimRight(out, "\n")
}

// ComputeEventID hashes the canonical serialization with SHA-256.
func ComputeEventID(pubkeyHex string, createdAt uint64, kind uint16, tags [][]string, content string) [32]byte {
	return sha256.Sum256(CanonicalSerialization(pubkeyHex, createdAt, kind, tags, content))
}

// PubkeyHex returns the lowercase hex form of the event's pubkey.
func (e *OverlayEvent) PubkeyHex() string {
	return hex.EncodeToString(e.Pubkey[:])
}

// Finalize recomputes and stores the event id from its current fields.
func (e *OverlayEvent) Finalize() {
	e.ID = ComputeEventID(e.PubkeyHex(), e.CreatedAt, e.Kind, e.Tags, e.Content)
}

// IDHex returns the lowercase hex form of the event id.
func (e *OverlayEvent) IDHex() string {
	return hex.EncodeToString(e.ID[:])
}
