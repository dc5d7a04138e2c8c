package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"runtime"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"golang.org/x/crypto/argon2"
)

// PasswordHasher derives and verifies salted password hashes.
type PasswordHasher interface {
	GenerateSalt() ([]byte, error)
	Hash(plaintext string, salt []byte) ([]byte, error)
	Verify(plaintext string, salt, expected []byte) bool
}

// Argon2Params controls the Argon2id work factor and input bounds.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2Params struct {
	MemoryKiB         uint32
	Iterations        uint32
	Parallelism       uint8
	SaltLength        uint32
	KeyLength         uint32
	MaxPasswordLength int
}

// DefaultArgon2Params returns a baseline suitable for interactive logins.
func DefaultArgon2Params() Argon2Params {
	threads := runtime.NumCPU()
	if threads > 4 {
		threads = 4
	}
	if threads < 1 {
		threads = 1
	}

	return Argon2Params{
		MemoryKiB:         64 * 1024,
		Iterations:        3,
		Parallelism:       uint8(threads), // #nosec G115 -- clamped to [1..4]
		SaltLength:        16,
		KeyLength:         32,
		MaxPasswordLength: 128,
	}
}

type Argon2Hasher struct {
	params Argon2Params
	random io.Reader
}

// NewArgon2Hasher returns a hasher drawing salts from random, or from
// crypto/rand when random is nil.
func NewArgon2Hasher(params Argon2Params, random io.Reader) *Argon2Hasher {
	if random == nil {
		random = rand.Reader
	}
	return &Argon2Hasher{params: params, random: random}
}

func (h *Argon2Hasher) GenerateSalt() ([]byte, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.random, salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return salt, nil
}

// Hash is deterministic for a given (plaintext, salt) pair. Plaintexts longer
// than MaxPasswordLength bytes are rejected with common.ErrInvalidInput.
func (h *Argon2Hasher) Hash(plaintext string, salt []byte) ([]byte, error) {
	if h.tooLong(plaintext) {
		return nil, fmt.Errorf("%w: password longer than %d bytes", common.ErrInvalidInput, h.params.MaxPasswordLength)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", common.ErrInvalidInput)
	}
	return h.derive(plaintext, salt), nil
}

// Verify recomputes the hash and compares it in constant time.
func (h *Argon2Hasher) Verify(plaintext string, salt, expected []byte) bool {
	if h.tooLong(plaintext) || len(salt) == 0 || len(expected) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(h.derive(plaintext, salt), expected) == 1
}

func (h *Argon2Hasher) derive(plaintext string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.params.Iterations,
		h.params.MemoryKiB,
		h.params.Parallelism,
		h.params.KeyLength,
	)
}

func (h *Argon2Hasher) tooLong(plaintext string) bool {
	return h.params.MaxPasswordLength > 0 && len(plaintext) > h.params.MaxPasswordLength
}
