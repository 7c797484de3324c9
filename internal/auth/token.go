package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature, shape,
	// or expiry checks.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidAuthHeader is returned when an authorization header does
	// not match the exact "Bearer <token>" scheme.
	ErrInvalidAuthHeader = errors.New("invalid authorization header")
)

// TokenService issues and verifies signed, time-limited identity tokens.
// The secret is set once at construction and never rotated.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	return &TokenService{secret: secret, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates an HS256 token binding userID and an expiry of now+TTL.
func (s *TokenService) Issue(userID int) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// Verify checks signature, algorithm, and expiry, and returns the user id
// bound into the token. Tokens signed with a different key or algorithm
// are rejected.
func (s *TokenService) Verify(tokenString string) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// ParseBearer extracts the token from an authorization header. The header
// must match exactly the two-token scheme "Bearer <token>" with a single
// space separator; any other shape is rejected.
func ParseBearer(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidAuthHeader
	}
	return parts[1], nil
}
