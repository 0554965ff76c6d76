// Package auth issues and checks the bearer tokens guarding the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// TokenType is the token_type returned alongside every access token.
const TokenType = "bearer"

// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Issuer signs tokens with an HMAC secret and checks them against a
// credential store.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	users  domain.CredentialStore
	now    func() time.Time
}

// NewIssuer creates an issuer. secret must be non-empty.
func NewIssuer(secret string, ttl time.Duration, users domain.CredentialStore) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		users:  users,
		now:    time.Now,
	}
}

// Login verifies the password and returns a fresh token.
func (i *Issuer) Login(ctx context.Context, username, password string) (*Token, error) {
	user, err := i.users.Verify(ctx, username, password)
	if err != nil {
		zap.L().Warn("login refused", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	signed, err := i.Issue(user.Username)
	if err != nil {
		return nil, err
	}
	zap.L().Info("login", zap.String("username", user.Username))
	return &Token{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresIn:   int(i.ttl.Seconds()),
	}, nil
}

// Issue signs a token for username.
func (i *Issuer) Issue(username string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates raw and returns its claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(i.now()) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves a token to an active user.
func (i *Issuer) Authenticate(ctx context.Context, raw string) (*domain.User, error) {
	claims, err := i.Parse(raw)
	if err != nil {
		return nil, err
	}
	user, err := i.users.Lookup(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.Disabled {
		return nil, ErrInvalidToken
	}
	return user, nil
}
