package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/gestion/auth-api/internal/db"
	"github.com/google/uuid"
)

// RefreshTokenRepo is the persistence the store needs. RedeemRefreshToken must
// be conditional and atomic: it revokes the old token and inserts the new one
// only if the old one is still live, so exactly one concurrent redeemer of the
// same value can win.
type RefreshTokenRepo interface {
	InsertRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	RedeemRefreshToken(ctx context.Context, oldHash, newHash string, newExpiresAt time.Time) (uuid.UUID, error)
}

// RefreshTokenStore issues and rotates opaque single-use refresh tokens.
// Values are 256 bits of randomness; only their sha256 hash is stored.
type RefreshTokenStore struct {
	repo RefreshTokenRepo
	ttl  time.Duration
}

func NewRefreshTokenStore(repo RefreshTokenRepo, ttl time.Duration) *RefreshTokenStore {
	return &RefreshTokenStore{repo: repo, ttl: ttl}
}

// Issue creates a fresh token for the user and returns its opaque value.
func (s *RefreshTokenStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	value, hash, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	if err := s.repo.InsertRefreshToken(ctx, userID, hash, time.Now().Add(s.ttl)); err != nil {
		return "", err
	}
	return value, nil
}

// Redeem rotates a token: the presented value is revoked and a replacement for
// the same user is born in one atomic store operation. Absent, already-revoked
// and expired values all collapse to ErrUnauthorized; the old value is
// permanently unusable after a successful redemption.
func (s *RefreshTokenStore) Redeem(ctx context.Context, value string) (uuid.UUID, string, error) {
	if value == "" {
		return uuid.Nil, "", ErrUnauthorized
	}

	newValue, newHash, err := newRefreshToken()
	if err != nil {
		return uuid.Nil, "", err
	}

	userID, err := s.repo.RedeemRefreshToken(ctx, hashRefreshToken(value), newHash, time.Now().Add(s.ttl))
	if err != nil {
		if db.IsNoRows(err) {
			return uuid.Nil, "", ErrUnauthorized
		}
		return uuid.Nil, "", err
	}
	return userID, newValue, nil
}

func newRefreshToken() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	return value, hashRefreshToken(value), nil
}

func hashRefreshToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
