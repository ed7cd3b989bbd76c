package random

import (
	"crypto/rand"
)

// Random produces unguessable strings and can be mocked for testing
type Random interface {
	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String generates a random string of the given length from the given
// alphabet. Bytes that would bias the distribution are rejected, so every
// symbol is equally likely. The alphabet must have at most 256 symbols.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 || len(alphabet) > 256 {
		return ""
	}

	// Largest multiple of len(alphabet) that fits in a byte
	limit := 256 - 256%len(alphabet)

	result := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(result) < length {
		// crypto/rand.Read never returns an error
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, alphabet[int(b)%len(alphabet)])
			if len(result) == length {
				break
			}
		}
	}
	return string(result)
}
