package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_RoundTrip(t *testing.T) {
	for _, algo := range []string{AlgorithmBcrypt, AlgorithmArgon2id} {
		h, err := New(Config{Algorithm: algo, BcryptCost: bcrypt.MinCost})
		if err != nil {
			t.Fatalf("%s: New: %v", algo, err)
		}
		hash, err := h.Hash("pw1234567")
		if err != nil {
			t.Fatalf("%s: Hash: %v", algo, err)
		}
		if hash == "pw1234567" {
			t.Fatalf("%s: hash equals plaintext", algo)
		}

		ok, err := h.Verify("pw1234567", hash)
		if err != nil || !ok {
			t.Fatalf("%s: expected match, got ok=%v err=%v", algo, ok, err)
		}
		ok, err = h.Verify("wrong-password", hash)
		if err != nil || ok {
			t.Fatalf("%s: expected mismatch, got ok=%v err=%v", algo, ok, err)
		}
	}
}

func TestHasher_VerifiesEitherFormat(t *testing.T) {
	argon, err := New(Config{Algorithm: AlgorithmArgon2id})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bc, err := New(Config{Algorithm: AlgorithmBcrypt, BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hash, err := argon.Hash("secret-pass")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected argon2id hash %q", hash)
	}
	if ok, err := bc.Verify("secret-pass", hash); err != nil || !ok {
		t.Fatalf("bcrypt hasher should verify argon2id hashes, ok=%v err=%v", ok, err)
	}
}

func TestHasher_Errors(t *testing.T) {
	if _, err := New(Config{Algorithm: "md5"}); err == nil {
		t.Fatalf("expected unsupported algorithm error")
	}
	if _, err := New(Config{BcryptCost: 99}); err == nil {
		t.Fatalf("expected cost range error")
	}

	h, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := h.Verify("x", "plaintext"); !errors.Is(err, ErrUnknownHash) {
		t.Fatalf("expected ErrUnknownHash, got %v", err)
	}
}

func TestHasher_OverLongCandidateIsMismatch(t *testing.T) {
	h, err := New(Config{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	longest := strings.Repeat("p", 72)
	hash, err := h.Hash(longest)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ok, err := h.Verify(longest, hash); err != nil || !ok {
		t.Fatalf("72-byte password must verify, got ok=%v err=%v", ok, err)
	}
	ok, err := h.Verify(longest+"p", hash)
	if err != nil || ok {
		t.Fatalf("expected clean mismatch for a longer candidate, got ok=%v err=%v", ok, err)
	}
}
