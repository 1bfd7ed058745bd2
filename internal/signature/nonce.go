package signature

import (
	"crypto/rand"
	"fmt"
	"io"
)

// NonceAlphabet is the character set nonces are drawn from.
const NonceAlphabet = "abc123def456ghi789jk0_"

// NonceLength is the number of characters in a nonce.
const NonceLength = 7

// NonceSource draws nonces from a source of random bytes.
type NonceSource struct {
	random io.Reader
}

// NewNonceSource returns a NonceSource reading from r, or from crypto/rand
// when r is nil.
func NewNonceSource(r io.Reader) *NonceSource {
	if r == nil {
		r = rand.Reader
	}
	return &NonceSource{random: r}
}

// Generate returns a fresh nonce. Each character is one random byte taken
// modulo the alphabet size.
func (s *NonceSource) Generate() (string, error) {
	buf := make([]byte, NonceLength)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("reading nonce bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = NonceAlphabet[int(b)%len(NonceAlphabet)]
	}
	return string(buf), nil
}
