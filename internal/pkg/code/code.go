package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generator produces fixed-width numeric one-time codes from crypto/rand.
// The zero value is not usable; construct with New.
type Generator struct {
	max    *big.Int
	format string
}

// New returns a Generator for codes of the given number of digits.
// Leading zeros are preserved, so a 6-digit generator covers 000000–999999.
func New(digits int) *Generator {
	max := big.NewInt(10)
	max.Exp(max, big.NewInt(int64(digits)), nil)
	return &Generator{max: max, format: fmt.Sprintf("%%0%dd", digits)}
}

// Generate returns a fresh uniformly-random code. No state is retained
// between calls.
func (g *Generator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf(g.format, n), nil
}
