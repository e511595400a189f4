package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"madchef/internal/domain"
)

// TokenIssuer signs and verifies the API's own access and refresh tokens.
type TokenIssuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	HashCost      int
	Now           func() time.Time
}

// TokenPair is a freshly issued access/refresh pair. RefreshHash is what
// gets stored; the refresh token itself only goes to the client.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshHash      string
	RefreshExpiresAt time.Time
}

type tokenClaims struct {
	domain.Claims
	jwt.RegisteredClaims
}

func (t *TokenIssuer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *TokenIssuer) sign(c domain.Claims, secret []byte, ttl time.Duration, id string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Claims: c,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID.String(),
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	raw, err := tok.SignedString(secret)
	return raw, exp, err
}

// Issue signs a new pair for c.
func (t *TokenIssuer) Issue(c domain.Claims) (*TokenPair, error) {
	access, _, err := t.sign(c, t.AccessSecret, t.AccessTTL, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	jti := uuid.NewString()
	refresh, exp, err := t.sign(c, t.RefreshSecret, t.RefreshTTL, jti)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	cost := t.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(jti), cost)
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, RefreshHash: string(hash), RefreshExpiresAt: exp}, nil
}

// IssueAccess signs an access token only.
func (t *TokenIssuer) IssueAccess(c domain.Claims) (string, error) {
	raw, _, err := t.sign(c, t.AccessSecret, t.AccessTTL, uuid.NewString())
	return raw, err
}

func (t *TokenIssuer) parse(raw string, secret []byte) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}
		return nil, domain.UnauthorizedError{Msg: msg, Err: err}
	}
	if claims.UserID == uuid.Nil || !claims.Role.Valid() {
		return nil, domain.UnauthorizedError{Msg: "invalid token"}
	}
	return claims, nil
}

// ParseAccess verifies an access token and returns its claims.
func (t *TokenIssuer) ParseAccess(raw string) (*domain.Claims, error) {
	c, err := t.parse(raw, t.AccessSecret)
	if err != nil {
		return nil, err
	}
	return &c.Claims, nil
}

// ParseRefresh verifies a refresh token and returns its claims and id.
func (t *TokenIssuer) ParseRefresh(raw string) (*domain.Claims, string, error) {
	c, err := t.parse(raw, t.RefreshSecret)
	if err != nil {
		return nil, "", err
	}
	return &c.Claims, c.ID, nil
}

// MatchRefresh checks a refresh token id against its stored hash.
func MatchRefresh(hash, jti string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(jti)) == nil
}
