/*
File Name:  SyncRequest.go
Copyright:  2024 Hearthmesh Contributors

SyncRequest TLV (§4.1): `type(1) | length(2, BE) | value`, repeated until the
buffer ends. Unknown types are skipped (forward-compatible). Decoding fails
on a truncated TLV header or value, an MBYTES value that is not 2 bytes, a K
value that is not 1 byte, or a `bits` value whose length does not match the
declared `mBytes`.

  0x01 MBYTES  value = 2-byte BE u16
  0x02 K       value = 1-byte u8
  0x03 BITS    value length must equal mBytes
*/

package protocol

import "encoding/binary"

const (
	syncTLVMBytes = 0x01
	syncTLVK      = 0x02
	syncTLVBits   = 0x03
)

// SyncRequest carries a Bloom filter snapshot for anti-entropy (§3.1, §4.3).
type SyncRequest struct {
	MBytes uint16
	K      uint8
	Bits   []byte
}

// EncodeSyncRequest serializes s as a TLV stream.
func EncodeSyncRequest(s *SyncRequest) []byte {
	out := make([]byte, 0, 3+2+3+1+3+len(s.Bits))

	out = append(out, syncTLVMBytes)
	out = appendU16Len(out, 2)
	var mb [2]byte
	binary.BigEndian.PutUint16(mb[:], s.MBytes)
	out = append(out, mb[:]...)

	out = append(out, syncTLVK)
	out = appendU16Len(out, 1)
	out = append(out, s.K)

	out = append(out, syncTLVBits)
	out = appendU16Len(out, len(s.Bits))
	out = append(out, s.Bits...)

	return out
}

// DecodeSyncRequest parses a SyncRequest TLV stream. Fails on malformed TLV
// framing, wrong MBYTES/K value lengths, or a bits payload whose length does
// not equal the declared mBytes.
func DecodeSyncRequest(raw []byte) (*SyncRequest, error) {
	s := &SyncRequest{}
	var haveBits bool

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
		case syncTLVMBytes:
			if l != 2 {
				return nil, ErrMalformedPacket
			}
			s.MBytes = binary.BigEndian.Uint16(value)
		case syncTLVK:
			if l != 1 {
				return nil, ErrMalformedPacket
			}
			s.K = value[0]
		case syncTLVBits:
			s.Bits = append([]byte(nil), value...)
			haveBits = true
		default:
			// unknown type, tolerated
		}
	}

	if haveBits && len(s.Bits) != int(s.MBytes) {
		return nil, ErrMalformedPacket
	}

	return s, nil
}
