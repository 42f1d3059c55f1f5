// Package password hashes and verifies user passwords. Hashes are
// self-describing, so Verify accepts both bcrypt and argon2id regardless of
// which algorithm new hashes are produced with.
package password

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// maxBcryptInput is the longest input bcrypt hashes without truncation.
const maxBcryptInput = 72

var ErrUnknownHash = errors.New("password: unrecognised hash format")

// Hasher turns plaintext into a one-way verifier and checks candidates against it.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

type Config struct {
	Algorithm  string
	BcryptCost int
}

type hasher struct {
	algorithm  string
	bcryptCost int
}

func New(cfg Config) (Hasher, error) {
	algorithm := strings.ToLower(strings.TrimSpace(cfg.Algorithm))
	if algorithm == "" {
		algorithm = AlgorithmBcrypt
	}
	if algorithm != AlgorithmBcrypt && algorithm != AlgorithmArgon2id {
		return nil, fmt.Errorf("password: unsupported algorithm %q", cfg.Algorithm)
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("password: bcrypt cost %d out of range", cost)
	}
	return &hasher{algorithm: algorithm, bcryptCost: cost}, nil
}

func (h *hasher) Hash(plain string) (string, error) {
	switch h.algorithm {
	case AlgorithmArgon2id:
		return argon2id.CreateHash(plain, argon2id.DefaultParams)
	default:
		out, err := bcrypt.GenerateFromPassword([]byte(plain), h.bcryptCost)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func (h *hasher) Verify(plain, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return argon2id.ComparePasswordAndHash(plain, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		// Compare would truncate instead of refusing.
		if len(plain) > maxBcryptInput {
			return false, nil
		}
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, ErrUnknownHash
	}
}
