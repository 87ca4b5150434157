package overlay

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestSealThenOpenGiftWrapRoundTrips(t *testing.T) {
	var key [32]byte
	if _, err := rand.Read(key[:]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plaintext := []byte("meet at the usual place")
	sealed, err := SealGiftWrap(plaintext, &key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opened, err := OpenGiftWrap(sealed, &key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Fatalf("expected round-tripped plaintext to match")
	}
}

func TestOpenGiftWrapFailsWithWrongKey(t *testing.T) {
	var key, wrongKey [32]byte
	rand.Read(key[:])
	rand.Read(wrongKey[:])

	sealed, err := SealGiftWrap([]byte("secret"), &key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := OpenGiftWrap(sealed, &wrongKey); err != ErrGiftWrapOpenFailed {
		t.Fatalf("expected ErrGiftWrapOpenFailed, got %v", err)
	}
}

func TestOpenGiftWrapRejectsTruncatedEnvelope(t *testing.T) {
	var key [32]byte
	if _, err := OpenGiftWrap([]byte("short"), &key); err != ErrGiftWrapOpenFailed {
		t.Fatalf("expected ErrGiftWrapOpenFailed for a too-short envelope, got %v", err)
	}
}
