package service

import (
	"errors"
	"fmt"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the account id in the subject and the role it was issued for.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenService interface {
	Issue(role model.Role, subject string) (string, error)
	Verify(role model.Role, token string) (string, error)
	TTL() time.Duration
}

type tokenServiceImpl struct {
	secrets map[model.Role][]byte
	ttl     time.Duration
	now     func() time.Time
}

func NewTokenService(cfg *config.Auth) TokenService {
	return &tokenServiceImpl{
		secrets: map[model.Role][]byte{
			model.RoleUser:  []byte(cfg.UserSecret),
			model.RoleAdmin: []byte(cfg.AdminSecret),
		},
		ttl: cfg.TokenTTL,
		now: time.Now,
	}
}

func (s *tokenServiceImpl) TTL() time.Duration {
	return s.ttl
}

func (s *tokenServiceImpl) Issue(role model.Role, subject string) (string, error) {
	secret, ok := s.secrets[role]
	if !ok {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := s.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and role, and returns the subject.
func (s *tokenServiceImpl) Verify(role model.Role, token string) (string, error) {
	secret, ok := s.secrets[role]
	if !ok {
		return "", fmt.Errorf("unknown role %q", role)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.Role != role || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
