package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	similarChars   = "il1Lo0O"
)

// Generated password length bounds.
const (
	MinPasswordLength = 4
	MaxPasswordLength = 128
)

var (
	// ErrEmptyCharset is returned when no character class is selected.
	ErrEmptyCharset = errors.New("at least one character type must be selected")
	// ErrInvalidLength is returned when the requested length is out of bounds.
	ErrInvalidLength = fmt.Errorf("password length must be between %d and %d", MinPasswordLength, MaxPasswordLength)
)

// GeneratorOptions controls password generation.
type GeneratorOptions struct {
	Length           int
	IncludeLowercase bool
	IncludeUppercase bool
	IncludeDigits    bool
	IncludeSymbols   bool
	ExcludeSimilar   bool
}

// DefaultGeneratorOptions returns the options used when none are given.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Length:           16,
		IncludeLowercase: true,
		IncludeUppercase: true,
		IncludeDigits:    true,
		IncludeSymbols:   true,
	}
}

// Generate produces a random password from the selected character classes
// using a cryptographically secure source.
func Generate(opts GeneratorOptions) (string, error) {
	if opts.Length < MinPasswordLength || opts.Length > MaxPasswordLength {
		return "", ErrInvalidLength
	}

	var charset string
	if opts.IncludeLowercase {
		charset += lowercaseChars
	}
	if opts.IncludeUppercase {
		charset += uppercaseChars
	}
	if opts.IncludeDigits {
		charset += digitChars
	}
	if opts.IncludeSymbols {
		charset += symbolChars
	}

	if opts.ExcludeSimilar {
		var b strings.Builder
		for _, r := range charset {
			if !strings.ContainsRune(similarChars, r) {
				b.WriteRune(r)
			}
		}
		charset = b.String()
	}

	if charset == "" {
		return "", ErrEmptyCharset
	}

	max := big.NewInt(int64(len(charset)))
	out := make([]byte, opts.Length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}

	return string(out), nil
}
