package protocol

import "testing"

func TestVerificationRoundTripChallenge(t *testing.T) {
	v := &Verification{
		NoiseKeyFingerprint:   []byte{1, 2, 3, 4},
		SigningKeyFingerprint: []byte{5, 6, 7, 8},
	}
	for i := range v.Nonce {
		v.Nonce[i] = byte(i)
	}

	raw := EncodeVerification(v)
	decoded, err := DecodeVerification(raw)
	if err != nil {
		t.Fatalf("DecodeVerification: %v", err)
	}
	if decoded.Nonce != v.Nonce {
		t.Fatalf("nonce mismatch")
	}
	if len(decoded.Signature) != 0 {
		t.Fatalf("expected no signature on challenge, got %v", decoded.Signature)
	}
}

func TestVerificationRoundTripResponse(t *testing.T) {
	v := &Verification{
		NoiseKeyFingerprint:   []byte{1, 2, 3, 4},
		SigningKeyFingerprint: []byte{5, 6, 7, 8},
		Signature:             []byte{9, 9, 9, 9, 9, 9, 9, 9},
	}

	raw := EncodeVerification(v)
	if len(raw) > MaxVerificationPayload {
		t.Fatalf("payload exceeds cap: %d", len(raw))
	}

	decoded, err := DecodeVerification(raw)
	if err != nil {
		t.Fatalf("DecodeVerification: %v", err)
	}
	if string(decoded.Signature) != string(v.Signature) {
		t.Fatalf("signature mismatch")
	}
}

func TestVerificationOversizedRejected(t *testing.T) {
	raw := make([]byte, MaxVerificationPayload+1)
	if _, err := DecodeVerification(raw); err != ErrMalformedPacket {
		t.Fatalf("expected ErrMalformedPacket, got %v", err)
	}
}
