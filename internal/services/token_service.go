package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/nutrietary-backend/internal/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of every issued access token (10,080 minutes).
const TokenTTL = 7 * 24 * time.Hour

var (
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenMalformed = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID   uint
	Username string
}

type TokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), now: clock.Now}
}

// Issue signs an HS256 token for the user with sub, username, iat, exp and a
// random jti.
func (s *TokenService) Issue(userID uint, username string) (string, error) {
	now := s.now()
	claims := TokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry of a raw token string.
func (s *TokenService) Verify(raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrTokenMissing
	}
	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, s.KeyFunc,
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, ClassifyTokenError(err)
	}
	return IdentityFromToken(token)
}

// KeyFunc only accepts HMAC-signed tokens.
func (s *TokenService) KeyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.secret, nil
}

// IdentityFromToken reads the caller out of an already validated token.
func IdentityFromToken(token *jwt.Token) (Identity, error) {
	if token == nil || !token.Valid {
		return Identity{}, ErrTokenMalformed
	}
	claims, ok := token.Claims.(*TokenClaims)
	if !ok || claims.ExpiresAt == nil {
		return Identity{}, ErrTokenMalformed
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, ErrTokenMalformed
	}
	return Identity{UserID: uint(id), Username: claims.Username}, nil
}

// ClassifyTokenError maps a jwt parse error onto ErrTokenExpired or
// ErrTokenMalformed.
func ClassifyTokenError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrTokenMalformed
}
