/*
File Name:  GiftWrap.go
Copyright:  2024 Hearthmesh Contributors

Gift-wrap envelope sealing for overlay direct messages (§4.5.2 "Gift wrap":
"an encrypted overlay envelope hiding both sender and content from relays").
Uses golang.org/x/crypto/nacl/secretbox for authenticated encryption, the
same family of primitive the teacher's transfer layer assumes is supplied
externally (§1 Non-goals: cryptographic primitives are assumed, not
implemented, for the mesh signature/identity layer); the overlay gift-wrap
envelope is the one place this module performs encryption itself, since the
spec names the envelope's existence as part of the transport contract.
*/

package overlay

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrGiftWrapOpenFailed is returned when a gift-wrap envelope fails to
// authenticate (wrong key, or tampered/corrupt ciphertext).
var ErrGiftWrapOpenFailed = errors.New("gift wrap envelope authentication failed")

// SealGiftWrap encrypts plaintext under key, returning nonce||ciphertext.
func SealGiftWrap(plaintext []byte, key *[32]byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, key)
	return sealed, nil
}

// OpenGiftWrap decrypts a nonce||ciphertext envelope produced by
// SealGiftWrap.
func OpenGiftWrap(envelope []byte, key *[32]byte) ([]byte, error) {
	if len(envelope) < 24 {
		return nil, ErrGiftWrapOpenFailed
	}
	var nonce [24]byte
	copy(nonce[:], envelope[:24])

	plaintext, ok := secretbox.Open(nil, envelope[24:], &nonce, key)
	if !ok {
		return nil, ErrGiftWrapOpenFailed
	}
	return plaintext, nil
}
