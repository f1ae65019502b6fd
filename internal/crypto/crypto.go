// Package crypto implements the client side of the zero-knowledge contract:
// credential payloads are serialized, encrypted under a passphrase-derived
// key, and only the resulting opaque ciphertext ever reaches the server.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecryption is returned when the passphrase is wrong or the ciphertext is
// malformed or tampered with. The two cases are deliberately not
// distinguishable.
var ErrDecryption = errors.New("decryption failed")

const (
	formatVersion = 1

	saltSize = 16
	keySize  = 32 // AES-256

	// DefaultIterations is the default PBKDF2 iteration count used to derive
	// the cipher key from the passphrase.
	DefaultIterations = 100_000
)

// Payload is the decrypted form of a credential record. It exists only on the
// client and is never persisted or transmitted as plaintext.
type Payload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Params tunes the key derivation. The iteration count travels inside the
// ciphertext header so older records stay decryptable after it is raised.
type Params struct {
	Iterations int
}

// DefaultParams returns the recommended derivation parameters.
func DefaultParams() Params {
	return Params{Iterations: DefaultIterations}
}

// DeriveKey derives the AES-256 cipher key from a passphrase and salt using
// PBKDF2-SHA256. The raw passphrase is never used as key material directly.
func DeriveKey(passphrase string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
}

// NewSalt returns a random salt from a cryptographically secure source.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Encrypt serializes the payload to JSON and encrypts it with AES-256-GCM
// under a key derived from the passphrase. The output is
// base64(version || iterations || salt || nonce || ciphertext); the GCM tag
// authenticates the whole blob, so tampering and wrong passphrases are
// rejected deterministically on decrypt.
func Encrypt(payload Payload, passphrase string, params Params) (string, error) {
	if params.Iterations <= 0 {
		params.Iterations = DefaultIterations
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload: %w", err)
	}

	salt, err := NewSalt()
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(DeriveKey(passphrase, salt, params.Iterations))
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	header := make([]byte, 0, 1+4+saltSize+gcm.NonceSize())
	header = append(header, formatVersion)
	header = binary.BigEndian.AppendUint32(header, uint32(params.Iterations))
	header = append(header, salt...)
	header = append(header, nonce...)

	blob := gcm.Seal(header, nonce, plaintext, nil)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. It returns ErrDecryption for a wrong passphrase,
// corrupt ciphertext, or an unknown format; it never returns garbage.
func Decrypt(ciphertext string, passphrase string) (Payload, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return Payload{}, ErrDecryption
	}

	const headerSize = 1 + 4 + saltSize
	if len(blob) < headerSize || blob[0] != formatVersion {
		return Payload{}, ErrDecryption
	}

	iterations := int(binary.BigEndian.Uint32(blob[1:5]))
	if iterations <= 0 {
		return Payload{}, ErrDecryption
	}
	salt := blob[5:headerSize]

	gcm, err := newGCM(DeriveKey(passphrase, salt, iterations))
	if err != nil {
		return Payload{}, ErrDecryption
	}

	rest := blob[headerSize:]
	if len(rest) < gcm.NonceSize() {
		return Payload{}, ErrDecryption
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return Payload{}, ErrDecryption
	}

	var payload Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return Payload{}, ErrDecryption
	}

	return payload, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
