package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long an issued room credential stays valid
const DefaultTokenTTL = time.Hour

// VideoGrant carries the room capabilities granted to the bearer
type VideoGrant struct {
	Room       string `json:"room"`
	RoomJoin   bool   `json:"roomJoin,omitempty"`
	RoomCreate bool   `json:"roomCreate,omitempty"`
}

// RoomClaims represents the claims in a LiveKit-compatible access token
type RoomClaims struct {
	Name  string      `json:"name,omitempty"`
	Video *VideoGrant `json:"video,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs room-access tokens with an API key/secret pair
type TokenIssuer struct {
	apiKey    string
	apiSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// TokenIssuerOption configures a TokenIssuer
type TokenIssuerOption func(*TokenIssuer)

// WithIssuerClock overrides the clock used for nbf/exp
func WithIssuerClock(now func() time.Time) TokenIssuerOption {
	return func(i *TokenIssuer) {
		i.now = now
	}
}

// NewTokenIssuer creates an issuer. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenIssuer(apiKey, apiSecret string, ttl time.Duration, opts ...TokenIssuerOption) (*TokenIssuer, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New("livekit api key/secret required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	issuer := &TokenIssuer{
		apiKey:    apiKey,
		apiSecret: []byte(apiSecret),
		ttl:       ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

// Issue generates a token allowing identity to join (and create) room.
// It returns the signed token and its expiry.
func (i *TokenIssuer) Issue(identity, room string) (string, time.Time, error) {
	if identity == "" || room == "" {
		return "", time.Time{}, errors.New("identity and room are required")
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)

	claims := &RoomClaims{
		Name: identity,
		Video: &VideoGrant{
			Room:       room,
			RoomJoin:   true,
			RoomCreate: true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    i.apiKey,
			Subject:   identity,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.apiSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate validates a token issued by this issuer and returns the claims
func (i *TokenIssuer) Validate(tokenString string) (*RoomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RoomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.apiSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.apiKey),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*RoomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}
