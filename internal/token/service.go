// Package token issues and verifies the stateless HS256 tokens that prove a
// caller's identity. Nothing is stored server-side, so a token stays valid until
// it expires.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
)

// Use tells access and refresh tokens apart.
type Use string

const (
	UseAccess  Use = "access"
	UseRefresh Use = "refresh"
)

// Config is built once at startup and never mutated.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c Config) validate() error {
	switch {
	case c.Secret == "":
		return errors.New("token: signing secret is required")
	case c.AccessTTL <= 0:
		return errors.New("token: access token TTL must be positive")
	case c.RefreshTTL <= 0:
		return errors.New("token: refresh token TTL must be positive")
	}
	return nil
}

// Claims is the signed payload. UserID is only present on access tokens.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Use    Use    `json:"token_use"`
	jwt.RegisteredClaims
}

// Email returns the subject the token was issued for.
func (c *Claims) Email() string { return c.Subject }

// Service signs and verifies tokens with a symmetric key.
type Service struct {
	cfg    Config
	key    []byte
	parser *jwt.Parser
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Service)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Service{
		cfg: cfg,
		key: []byte(cfg.Secret),
		// Expiry is checked against s.now rather than the package-level jwt.TimeFunc.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueAccessToken carries the user's email as subject and id as a claim.
func (s *Service) IssueAccessToken(user *domain.User) (string, error) {
	if user == nil || user.ID == "" || user.Email == "" {
		return "", domain.ErrInvalidPayload
	}
	return s.sign(Claims{UserID: user.ID, Use: UseAccess}, user.Email, s.cfg.AccessTTL)
}

// IssueRefreshToken carries only the email; it cannot resolve a user id on its own.
func (s *Service) IssueRefreshToken(user *domain.User) (string, error) {
	if user == nil || user.Email == "" {
		return "", domain.ErrInvalidPayload
	}
	return s.sign(Claims{Use: UseRefresh}, user.Email, s.cfg.RefreshTTL)
}

func (s *Service) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry. Every failure is reported as
// domain.ErrTokenVerification; the cause is only logged.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims, err := s.verify(tokenString)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, domain.ErrTokenVerification
	}
	return claims, nil
}

// VerifyAccess is Verify restricted to access tokens.
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Use != UseAccess || claims.UserID == "" {
		s.logger.Debug("token rejected", zap.String("token_use", string(claims.Use)))
		return nil, domain.ErrTokenVerification
	}
	return claims, nil
}

func (s *Service) verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	if err := canonicalSegments(tokenString); err != nil {
		return nil, err
	}
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid signature")
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return nil, errors.New("token expired")
	}
	if s.cfg.Issuer != "" && !claims.VerifyIssuer(s.cfg.Issuer, true) {
		return nil, errors.New("unexpected issuer")
	}
	if claims.Subject == "" {
		return nil, errors.New("missing subject")
	}
	switch claims.Use {
	case UseAccess, UseRefresh:
	default:
		return nil, fmt.Errorf("unknown token use %q", claims.Use)
	}
	return claims, nil
}

// canonicalSegments rejects segments whose trailing bits are not zero. The jwt
// decoder ignores those bits, so two spellings would verify as one token.
func canonicalSegments(tokenString string) error {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return errors.New("token must have three segments")
	}
	for i, segment := range segments {
		if _, err := base64.RawURLEncoding.Strict().DecodeString(segment); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

// IsValid never fails; it reports whether Verify would succeed.
func (s *Service) IsValid(tokenString string) bool {
	_, err := s.Verify(tokenString)
	return err == nil
}

// SubjectOf returns the email of a token that verifies.
func (s *Service) SubjectOf(tokenString string) (string, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
