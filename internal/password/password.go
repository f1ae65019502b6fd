// Package password implements master-password hashing for authentication.
// The hash gates access to the account; it is unrelated to the key that
// encrypts record payloads.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"
)

const saltSize = 16

// DefaultCost is the default bcrypt cost factor.
const DefaultCost = 12

// Hasher computes and verifies salted bcrypt hashes of master passwords.
type Hasher struct {
	cost      int
	dummyHash []byte
}

// NewHasher creates a Hasher with the given bcrypt cost. Costs below the
// bcrypt minimum fall back to DefaultCost. The dummy hash is burned at
// construction so lookups of unknown accounts can still pay the full
// comparison cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}

	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	dummy, err := hash("dummy", salt, cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Hasher{cost: cost, dummyHash: dummy}, nil
}

// NewSalt returns a random hex-encoded account salt from a cryptographically
// secure source.
func NewSalt() (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

// Hash computes the bcrypt hash of the salted master password. The plaintext
// is not retained anywhere after this call.
func (h *Hasher) Hash(masterPassword, salt string) ([]byte, error) {
	return hash(masterPassword, salt, h.cost)
}

// Verify compares a candidate password against the stored hash. The bcrypt
// comparison is constant-time; any mismatch reports false with a nil error,
// while resource failures surface as errors and must not be treated as a
// wrong password.
func (h *Hasher) Verify(storedHash []byte, candidate, salt string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(storedHash, preimage(candidate, salt))
	switch err {
	case nil:
		return true, nil
	case bcrypt.ErrMismatchedHashAndPassword:
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare password hash: %w", err)
	}
}

// VerifyDummy burns the same comparison cost as Verify against a throwaway
// hash. Called when the account does not exist, so unknown-email and
// wrong-password responses take comparable time.
func (h *Hasher) VerifyDummy(candidate string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, preimage(candidate, "dummy"))
}

func hash(masterPassword, salt string, cost int) ([]byte, error) {
	hashed, err := bcrypt.GenerateFromPassword(preimage(masterPassword, salt), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hashed, nil
}

// preimage folds the salted password through SHA-256 before bcrypt, which
// caps its input at 72 bytes. Without the fold a long password would push the
// salt past the cap.
func preimage(masterPassword, salt string) []byte {
	sum := sha256.Sum256([]byte(masterPassword + salt))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
