package sqlite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// kdfIterations is the PBKDF2-HMAC-SHA256 work factor.
	kdfIterations = 600_000
	kdfKeyLength  = 32
	saltLength    = 16
)

// ErrCiphertextTooShort is returned when a stored value is shorter than a GCM nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Sealer encrypts secrets with AES-256-GCM under a key derived from the
// deployment secret and the installation salt. It is safe for concurrent use.
type Sealer struct {
	gcm cipher.AEAD
}

// NewSealer derives the encryption key from secret and salt with PBKDF2 and
// prepares an AES-256-GCM AEAD.
func NewSealer(secret string, salt []byte) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is empty")
	}
	if len(salt) < saltLength {
		return nil, fmt.Errorf("salt must be at least %d bytes, got %d", saltLength, len(salt))
	}

	key := pbkdf2.Key([]byte(secret), salt, kdfIterations, kdfKeyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Sealer{gcm: gcm}, nil
}

// Seal encrypts plaintext and returns a base64-encoded string containing the
// nonce (12 bytes) prepended to the ciphertext. The empty string seals to "".
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := s.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a value produced by Seal. The empty string opens to "".
func (s *Sealer) Open(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := s.gcm.NonceSize()
	if len(data) < nonceSize {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}
