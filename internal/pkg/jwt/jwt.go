// Package jwt issues and verifies the HS256 tokens used by the API:
// short-lived access tokens carrying the caller's role and long-lived
// refresh tokens whose ID names a refresh session.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	issuer = "bookyourstay"
	leeway = 30 * time.Second
)

type Claims struct {
	AccountID uuid.UUID `json:"account_id"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	Type      string    `json:"type"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	AccountID uuid.UUID `json:"account_id"`
	Type      string    `json:"type"`
	jwt.RegisteredClaims
}

type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewService(secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

func (s *Service) registered(accountID uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   accountID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
}

func (s *Service) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// GenerateAccessToken signs an access token for the account.
func (s *Service) GenerateAccessToken(accountID uuid.UUID, role string, active bool) (string, error) {
	return s.sign(Claims{
		AccountID:        accountID,
		Role:             role,
		Active:           active,
		Type:             TokenTypeAccess,
		RegisteredClaims: s.registered(accountID, s.accessTTL),
	})
}

// GenerateRefreshToken signs a refresh token and returns its claims; the
// claims ID identifies the refresh session.
func (s *Service) GenerateRefreshToken(accountID uuid.UUID) (string, *RefreshClaims, error) {
	claims := &RefreshClaims{
		AccountID:        accountID,
		Type:             TokenTypeRefresh,
		RegisteredClaims: s.registered(accountID, s.refreshTTL),
	}
	token, err := s.sign(claims)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

func (s *Service) ValidateAccessToken(raw string) (*Claims, error) {
	claims, err := parse(s, raw, &Claims{})
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess || claims.AccountID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) ValidateRefreshToken(raw string) (*RefreshClaims, error) {
	claims, err := parse(s, raw, &RefreshClaims{})
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeRefresh || claims.AccountID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func parse[C jwt.Claims](s *Service, raw string, claims C) (C, error) {
	var zero C
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return zero, ErrExpiredToken
		}
		return zero, ErrInvalidToken
	}
	if !token.Valid {
		return zero, ErrInvalidToken
	}
	return claims, nil
}
