package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chemtrade/chemtrade-backend/pkg/config"
)

// Claims carries the acting operator identity. Every mutating operation in
// the workflow records this actor in the order history; it is never read from
// ambient state.
type Claims struct {
	Actor string `json:"actor"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs an actor token with the configured secret and lifetime.
func Issue(cfg config.JWTConfig, actor, role string) (string, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "", fmt.Errorf("actor is required")
	}
	now := time.Now()
	claims := Claims{
		Actor: actor,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   actor,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiration())),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// Parse validates the token signature and expiry and returns its claims.
func Parse(cfg config.JWTConfig, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, fmt.Errorf("parse actor token: %w", err)
	}
	if !token.Valid || strings.TrimSpace(claims.Actor) == "" {
		return nil, fmt.Errorf("invalid actor token")
	}
	return claims, nil
}
