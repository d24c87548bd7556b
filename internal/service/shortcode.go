package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// DefaultAlphabet is [A-Za-z0-9]; codes are case-sensitive.
	DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// DefaultCodeLength gives 62^6 (about 56.8 billion) possible codes.
	DefaultCodeLength = 6
)

// CodeGenerator produces candidate short codes
type CodeGenerator interface {
	Generate() (string, error)
}

// RandomCodeGenerator draws every character independently and uniformly
// from its alphabet using crypto/rand.
type RandomCodeGenerator struct {
	alphabet string
	length   int
	max      *big.Int
}

// NewRandomCodeGenerator validates the alphabet and length.
// The alphabet must be non-empty ASCII without repeated characters.
func NewRandomCodeGenerator(alphabet string, length int) (*RandomCodeGenerator, error) {
	if alphabet == "" {
		return nil, errors.New("alphabet must not be empty")
	}
	if length <= 0 {
		return nil, fmt.Errorf("code length must be positive, got %d", length)
	}

	seen := make(map[byte]bool, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if c >= 0x80 {
			return nil, fmt.Errorf("alphabet must be ASCII, found byte %#x", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("alphabet contains duplicate character %q", c)
		}
		seen[c] = true
	}

	return &RandomCodeGenerator{
		alphabet: alphabet,
		length:   length,
		max:      big.NewInt(int64(len(alphabet))),
	}, nil
}

// NewDefaultCodeGenerator returns a generator of 6-character [A-Za-z0-9] codes
func NewDefaultCodeGenerator() *RandomCodeGenerator {
	g, _ := NewRandomCodeGenerator(DefaultAlphabet, DefaultCodeLength)
	return g
}

// Generate returns a new random code.
// rand.Int samples without modulo bias, so every character is equally likely.
func (g *RandomCodeGenerator) Generate() (string, error) {
	code := make([]byte, g.length)
	for i := range code {
		n, err := rand.Int(rand.Reader, g.max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		code[i] = g.alphabet[n.Int64()]
	}
	return string(code), nil
}

// Capacity returns how many distinct codes the generator can produce,
// saturating at the largest int64.
func (g *RandomCodeGenerator) Capacity() int64 {
	total := new(big.Int).Exp(g.max, big.NewInt(int64(g.length)), nil)
	if !total.IsInt64() {
		return 1<<63 - 1
	}
	return total.Int64()
}
