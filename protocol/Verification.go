/*
File Name:  Verification.go
Copyright:  2024 Hearthmesh Contributors

Verification TLV (§4.1): a symmetric challenge/response form carrying a
noise-key fingerprint, a signing-key fingerprint, a 32-byte nonce, and (in the
response only) a signature of the nonce under the peer's signing key. Same
`type(1) | length(2, BE) | value` framing as SyncRequest. Payloads <= 512
bytes (§4.1).
*/

package protocol

import "encoding/binary"

const (
	verifyTLVNoiseKeyFP   = 0x01
	verifyTLVSigningKeyFP = 0x02
	verifyTLVNonce        = 0x03
	verifyTLVSignature    = 0x04
)

// MaxVerificationPayload bounds both challenge and response payloads (§4.1).
const MaxVerificationPayload = 512

// VerificationNonceSize is the fixed nonce length (§4.1).
const VerificationNonceSize = 32

// Verification is the decoded challenge or response. Signature is nil on a
// challenge and populated on a response.
type Verification struct {
	NoiseKeyFingerprint   []byte
	SigningKeyFingerprint []byte
	Nonce                 [VerificationNonceSize]byte
	Signature             []byte
}

// EncodeVerification serializes v as a TLV stream.
func EncodeVerification(v *Verification) []byte {
	out := make([]byte, 0, MaxVerificationPayload)

	out = append(out, verifyTLVNoiseKeyFP)
	out = appendU16Len(out, len(v.NoiseKeyFingerprint))
	out = append(out, v.NoiseKeyFingerprint...)

	out = append(out, verifyTLVSigningKeyFP)
	out = appendU16Len(out, len(v.SigningKeyFingerprint))
	out = append(out, v.SigningKeyFingerprint...)

	out = append(out, verifyTLVNonce)
	out = appendU16Len(out, VerificationNonceSize)
	out = append(out, v.Nonce[:]...)

	if len(v.Signature) > 0 {
		out = append(out, verifyTLVSignature)
		out = appendU16Len(out, len(v.Signature))
		out = append(out, v.Signature...)
	}

	return out
}

// DecodeVerification parses a Verification TLV stream.
func DecodeVerification(raw []byte) (*Verification, error) {
	if len(raw) > MaxVerificationPayload {
		return nil, ErrMalformedPacket
	}

	v := &Verification{}
	o := 0
	for o < len(raw) {
		if o+3 > len(raw) {
			return nil, ErrMalformedPacket
		}
		typ := raw[o]
		l := int(binary.BigEndian.Uint16(raw[o+1 : o+3]))
		o += 3
		if l > len(raw)-o {
			return nil, ErrMalformedPacket
		}
		value := raw[o : o+l]
		o += l

		switch typ {
		case verifyTLVNoiseKeyFP:
			v.NoiseKeyFingerprint = append([]byte(nil), value...)
		case verifyTLVSigningKeyFP:
			v.SigningKeyFingerprint = append([]byte(nil), value...)
		case verifyTLVNonce:
			if l != VerificationNonceSize {
				return nil, ErrMalformedPacket
			}
			copy(v.Nonce[:], value)
		case verifyTLVSignature:
			v.Signature = append([]byte(nil), value...)
		default:
			// unknown type, tolerated
		}
	}

	return v, nil
}
