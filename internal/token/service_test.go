package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

var issuedAt = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Secret:     "test-secret",
		Issuer:     "tasktracker-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}, WithClock(fixedClock(now)))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testUser() *domain.User {
	return &domain.User{ID: "7c0e4a52-6f7d-4a63-9d0b-9a3f1c2b5e11", Email: "a@x.com"}
}

func TestNewService_RequiresSecretAndTTLs(t *testing.T) {
	cases := []Config{
		{AccessTTL: time.Minute, RefreshTTL: time.Hour},
		{Secret: "s", RefreshTTL: time.Hour},
		{Secret: "s", AccessTTL: time.Minute},
	}
	for i, cfg := range cases {
		if _, err := NewService(cfg); err == nil {
			t.Fatalf("case %d: expected config error", i)
		}
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestService(t, issuedAt)
	user := testUser()

	tok, err := svc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %s, got %s", user.ID, claims.UserID)
	}
	if claims.Email() != user.Email {
		t.Fatalf("expected subject %s, got %s", user.Email, claims.Email())
	}
	if claims.Use != UseAccess {
		t.Fatalf("expected access token, got %q", claims.Use)
	}
	if want := issuedAt.Add(15 * time.Minute); !claims.ExpiresAt.Time.Equal(want) {
		t.Fatalf("expected exp %v, got %v", want, claims.ExpiresAt.Time)
	}
	if _, err := svc.VerifyAccess(tok); err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
}

func TestRefreshToken_CarriesOnlySubject(t *testing.T) {
	svc := newTestService(t, issuedAt)

	tok, err := svc.IssueRefreshToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "" {
		t.Fatalf("refresh token must not carry a user id, got %q", claims.UserID)
	}
	if claims.Use != UseRefresh {
		t.Fatalf("expected refresh token, got %q", claims.Use)
	}
	if _, err := svc.VerifyAccess(tok); !errors.Is(err, domain.ErrTokenVerification) {
		t.Fatalf("refresh token must not pass VerifyAccess, got %v", err)
	}
}

func TestVerify_Expiry(t *testing.T) {
	tok, err := newTestService(t, issuedAt).IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	checks := []struct {
		at    time.Time
		valid bool
	}{
		{issuedAt.Add(time.Minute), true},
		{issuedAt.Add(15*time.Minute - time.Second), true},
		{issuedAt.Add(15 * time.Minute), false},
		{issuedAt.Add(15*time.Minute + time.Second), false},
		{issuedAt.Add(48 * time.Hour), false},
	}
	for _, c := range checks {
		svc := newTestService(t, c.at)
		if got := svc.IsValid(tok); got != c.valid {
			t.Fatalf("at %v: expected valid=%v, got %v", c.at, c.valid, got)
		}
	}
}

func TestVerify_TamperedTokenIsRejected(t *testing.T) {
	svc := newTestService(t, issuedAt)
	tok, err := svc.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_."
	for i := 0; i < len(tok); i++ {
		for _, replacement := range alphabet {
			if byte(replacement) == tok[i] {
				continue
			}
			tampered := tok[:i] + string(replacement) + tok[i+1:]
			if svc.IsValid(tampered) {
				t.Fatalf("token with byte %d changed %q->%q still verifies", i, tok[i], replacement)
			}
		}
	}
}

func TestVerify_RejectsNonCanonicalSegmentEncoding(t *testing.T) {
	svc := newTestService(t, issuedAt)
	tok, err := svc.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flipping the lowest bit of the final character only touches padding bits
	// of the signature segment.
	last := tok[len(tok)-1]
	idx := strings.IndexByte(base64URLAlphabet, last)
	if idx < 0 {
		t.Fatalf("unexpected final character %q", last)
	}
	tampered := tok[:len(tok)-1] + string(base64URLAlphabet[idx^1])
	if svc.IsValid(tampered) {
		t.Fatalf("non-canonical signature %q verifies", tampered)
	}
}

const base64URLAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func TestVerify_RejectsForeignAndMalformedTokens(t *testing.T) {
	svc := newTestService(t, issuedAt)

	other, err := NewService(Config{
		Secret:     "another-secret",
		Issuer:     "tasktracker-test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, WithClock(fixedClock(issuedAt)))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	foreign, err := other.IssueAccessToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, tok := range []string{"", "garbage", "a.b.c", foreign, strings.Repeat("x", 300)} {
		_, err := svc.Verify(tok)
		if !errors.Is(err, domain.ErrTokenVerification) {
			t.Fatalf("expected ErrTokenVerification for %q, got %v", tok, err)
		}
		if svc.IsValid(tok) {
			t.Fatalf("expected %q to be invalid", tok)
		}
	}
}

func TestSubjectOf(t *testing.T) {
	svc := newTestService(t, issuedAt)
	tok, err := svc.IssueRefreshToken(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	email, err := svc.SubjectOf(tok)
	if err != nil {
		t.Fatalf("SubjectOf: %v", err)
	}
	if email != "a@x.com" {
		t.Fatalf("expected a@x.com, got %s", email)
	}

	if _, err := newTestService(t, issuedAt.Add(25*time.Hour)).SubjectOf(tok); !errors.Is(err, domain.ErrTokenVerification) {
		t.Fatalf("expected verification failure for expired token, got %v", err)
	}
}
