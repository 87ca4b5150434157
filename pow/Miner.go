/*
File Name:  Miner.go
Copyright:  2024 Hearthmesh Contributors

Leading-zero-bit proof-of-work miner for public overlay events (§4.6). The
mining loop is the one CPU-bound task in this module (§5); it yields to the
scheduler every ~16384 iterations rather than running to completion in one
uninterrupted burst, per the §9 design note on cooperative background tasks.
*/

package pow

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strconv"

	"github.com/hearthmesh/meshcore/protocol"
)

const yieldEvery = 16384

// leadingZeroTable[b] is the count of leading zero bits in byte value b,
// precomputed once (§4.6 "Algorithm" step 1).
var leadingZeroTable [256]int

func init() {
	for b := 0; b < 256; b++ {
		count := 0
		for bit := 7; bit >= 0; bit-- {
			if b&(1<<uint(bit)) != 0 {
				break
			}
			count++
		}
		leadingZeroTable[b] = count
	}
}

// LeadingZeroBits sums per-byte leading zero counts, short-circuiting at the
// first non-zero byte (§4.6).
func LeadingZeroBits(data []byte) int {
	total := 0
	for _, b := range data {
		total += leadingZeroTable[b]
		if b != 0 {
			break
		}
	}
	return total
}

// RequiredBits is the difficulty schedule over geohash string length (§4.6).
func RequiredBits(geohash string) int {
	switch {
	case len(geohash) <= 5:
		return 10
	case len(geohash) == 6:
		return 9
	default:
		return 8
	}
}

// Yield is called by Mine every yieldEvery iterations. Tests and callers that
// want cooperative scheduling can override it (e.g. to call runtime.Gosched
// or check a context for cancellation observability); the default does
// nothing since mining is not cancellable by design (§5 "Cancellation").
var Yield func() = func() {}

// Mine iterates nonces until the event id reaches targetBits leading zero
// bits, returning the winning nonce and the lowercase-hex event id (§4.6
// "Algorithm", §8 scenario 1).
func Mine(pubkeyHex string, createdAt uint64, kind uint16, baseTags [][]string, content string, targetBits int) (nonce uint64, idHex string) {
	seed, err := rand.Int(rand.Reader, new(big.Int).SetUint64(^uint64(0)))
	n := uint64(0)
	if err == nil {
		n = seed.Uint64()
	}

	tags := make([][]string, len(baseTags), len(baseTags)+1)
	copy(tags, baseTags)
	tags = append(tags, []string{"nonce", "", strconv.Itoa(targetBits)})
	nonceTagIdx := len(tags) - 1

	iterations := 0
	for {
		tags[nonceTagIdx][1] = strconv.FormatUint(n, 10)

		raw := protocol.CanonicalSerialization(pubkeyHex, createdAt, kind, tags, content)
		id := sha256.Sum256(raw)

		if LeadingZeroBits(id[:]) >= targetBits {
			return n, hex.EncodeToString(id[:])
		}

		n++
		iterations++
		if iterations%yieldEvery == 0 {
			Yield()
		}
	}
}

// NonceTag returns the ["nonce", "<n>", "<targetBits>"] tag for a verified
// mining result, so callers can append it to the base tags they already have.
func NonceTag(nonce uint64, targetBits int) []string {
	return []string{"nonce", strconv.FormatUint(nonce, 10), strconv.Itoa(targetBits)}
}

