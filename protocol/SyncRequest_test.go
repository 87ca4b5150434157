package protocol

import (
	"bytes"
	"testing"
)

func TestSyncRequestRoundTrip(t *testing.T) {
	s := &SyncRequest{MBytes: 256, K: 5, Bits: bytes.Repeat([]byte{0xAA}, 256)}

	raw := EncodeSyncRequest(s)
	decoded, err := DecodeSyncRequest(raw)
	if err != nil {
		t.Fatalf("DecodeSyncRequest: %v", err)
	}

	if decoded.MBytes != s.MBytes || decoded.K != s.K {
		t.Fatalf("header mismatch: %+v", decoded)
	}
	if !bytes.Equal(decoded.Bits, s.Bits) {
		t.Fatalf("bits mismatch")
	}
}

func TestSyncRequestUnknownTLVTolerated(t *testing.T) {
	s := &SyncRequest{MBytes: 4, K: 2, Bits: []byte{1, 2, 3, 4}}
	raw := EncodeSyncRequest(s)

	// Append an unknown TLV type.
	raw = append(raw, 0x7f, 0x00, 0x02, 0xAA, 0xBB)

	decoded, err := DecodeSyncRequest(raw)
	if err != nil {
		t.Fatalf("DecodeSyncRequest: %v", err)
	}
	if decoded.MBytes != 4 || decoded.K != 2 {
		t.Fatalf("unexpected decode result: %+v", decoded)
	}
}

func TestSyncRequestBitsLengthMismatchRejected(t *testing.T) {
	s := &SyncRequest{MBytes: 8, K: 2, Bits: []byte{1, 2, 3}} // only 3 bytes, declared 8
	raw := EncodeSyncRequest(s)
	if _, err := DecodeSyncRequest(raw); err != ErrMalformedPacket {
		t.Fatalf("expected ErrMalformedPacket, got %v", err)
	}
}
