package pow

import (
	"crypto/sha256"
	"strconv"
	"strings"
	"testing"

	"github.com/hearthmesh/meshcore/protocol"
)

// TestMineLowDifficultyTerminates is end-to-end scenario 1 from spec.md §8.
func TestMineLowDifficultyTerminates(t *testing.T) {
	pubkeyHex := strings.Repeat("a", 64)
	createdAt := uint64(1_700_000_000)
	kind := uint16(20000)
	baseTags := [][]string{{"g", "u4pruydqqvj"}}
	content := "hello"
	targetBits := 8

	nonce, idHex := Mine(pubkeyHex, createdAt, kind, baseTags, content, targetBits)
	if nonce == 0 {
		t.Fatalf("expected nonce > 0")
	}

	tags := append(append([][]string{}, baseTags...), NonceTag(nonce, targetBits))
	raw := protocol.CanonicalSerialization(pubkeyHex, createdAt, kind, tags, content)
	id := sha256.Sum256(raw)

	if got := hexString(id[:]); got != idHex {
		t.Fatalf("recomputed id %q does not match returned id %q", got, idHex)
	}
	if LeadingZeroBits(id[:]) < targetBits {
		t.Fatalf("recomputed id has fewer than %d leading zero bits", targetBits)
	}
}

// TestLeadingZeroBitsExactness is end-to-end scenario 2 from spec.md §8.
func TestLeadingZeroBitsExactness(t *testing.T) {
	data := make([]byte, 32)
	data[0] = 0x00
	data[1] = 0x00
	data[2] = 0xF0

	if got := LeadingZeroBits(data); got != 16 {
		t.Fatalf("expected 16 leading zero bits, got %d", got)
	}
}

func TestRequiredBitsSchedule(t *testing.T) {
	cases := map[string]int{
		"u4pru":       10,
		"u4prud":      9,
		"u4prudyqqvj": 8,
	}
	for geohash, want := range cases {
		if got := RequiredBits(geohash); got != want {
			t.Fatalf("RequiredBits(%q) = %d, want %d", geohash, got, want)
		}
	}
}

func TestNonceVerificationIndependentRecompute(t *testing.T) {
	pubkeyHex := strings.Repeat("b", 64)
	baseTags := [][]string{{"g", "9q8yy"}}
	nonce, idHex := Mine(pubkeyHex, 1, 1, baseTags, "x", 8)

	tags := append(append([][]string{}, baseTags...), []string{"nonce", strconv.FormatUint(nonce, 10), "8"})
	raw := protocol.CanonicalSerialization(pubkeyHex, 1, 1, tags, "x")
	id := sha256.Sum256(raw)

	if hexString(id[:]) != idHex {
		t.Fatalf("independent recomputation mismatch")
	}
	if LeadingZeroBits(id[:]) < 8 {
		t.Fatalf("expected at least 8 leading zero bits")
	}
}

func hexString(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexdigits[v>>4]
		out[i*2+1] = hexdigits[v&0x0f]
	}
	return string(out)
}
