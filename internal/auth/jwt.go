package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated identity attached to a request after
// successful token validation.
type Principal struct {
	Username string
	Role     Role
}

// Decode failures. Callers that gate requests are expected to collapse both
// into "unauthenticated"; the codec itself always reports the reason.
var (
	ErrTokenExpired = errors.New("session token expired")
	ErrTokenInvalid = errors.New("session token invalid")
)

// Claims carried inside a session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies session tokens. HS256 with a shared secret
// loaded from configuration.
type TokenCodec struct {
	secret []byte
	expiry time.Duration
}

// NewTokenCodec builds a codec. The secret must be non-empty; expiry is the
// token lifetime from issuance.
func NewTokenCodec(secret string, expiry time.Duration) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	if expiry <= 0 {
		return nil, errors.New("jwt expiry must be positive")
	}
	return &TokenCodec{secret: []byte(secret), expiry: expiry}, nil
}

// Encode issues a signed token for the given username and role.
func (tc *TokenCodec) Encode(username string, role Role) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tc.secret)
}

// Decode verifies a token and returns the principal it asserts. An optional
// "Bearer " prefix is stripped first. Returns ErrTokenExpired for expired
// tokens and ErrTokenInvalid for every other failure (malformed input, bad
// signature, unknown role).
func (tc *TokenCodec) Decode(tokenString string) (Principal, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return tc.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, ErrTokenInvalid
	}
	if !token.Valid {
		return Principal{}, ErrTokenInvalid
	}

	role, roleErr := ParseRole(claims.Role)
	if roleErr != nil || claims.Subject == "" {
		return Principal{}, ErrTokenInvalid
	}

	return Principal{Username: claims.Subject, Role: role}, nil
}
