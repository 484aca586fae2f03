package service

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"

	"github.com/gestion/auth-api/internal/db"
	"github.com/gestion/auth-api/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	minUserNameLength = 3
	maxUserNameLength = 100
	maxEmailLength    = 200
	minPasswordLength = 8
	maxPasswordLength = 128

	defaultRole = "USER"
	tokenType   = "Bearer"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConflict      = errors.New("conflict")
	ErrMisconfigured = errors.New("auth config invalid")
)

type UserRepo interface {
	CreateUser(ctx context.Context, id uuid.UUID, userName, email, passwordHash, role string) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// AuthService orchestrates register, login, refresh and identify over the
// hasher, the signer and the refresh-token store. Credential failures are
// logged with their specific cause but always surface as ErrUnauthorized, so
// responses never reveal whether a user exists or why a token was rejected.
type AuthService struct {
	users   UserRepo
	hasher  PasswordHasher
	signer  *TokenSigner
	refresh *RefreshTokenStore
}

func NewAuthService(users UserRepo, hasher PasswordHasher, signer *TokenSigner, refresh *RefreshTokenStore) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		signer:  signer,
		refresh: refresh,
	}
}

// Register creates a user with role USER and returns the public profile.
// Username and email are trimmed before validation and persisted trimmed, so
// the stored values are exactly what Login matches against. Uniqueness is
// enforced by the store's constraints, not by a pre-check, so concurrent
// duplicate registrations cannot both succeed.
func (s *AuthService) Register(ctx context.Context, userName, email, password string) (*model.UserResponse, error) {
	userName = strings.TrimSpace(userName)
	email = strings.TrimSpace(email)

	if err := validateRegistration(userName, email, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, uuid.New(), userName, email, hash, defaultRole)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	profile := user.Public()
	return &profile, nil
}

// Login accepts a username or an email. Unknown user and wrong password both
// yield the same ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, login, password string) (*model.TokenResponse, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetUserByLogin(ctx, login)
	if err != nil {
		if db.IsNoRows(err) {
			log.Printf("login rejected: unknown user")
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		log.Printf("login rejected: password mismatch for user %s", user.ID)
		return nil, ErrUnauthorized
	}

	return s.issueTokens(ctx, user)
}

// Identify resolves an access token to the current public profile. An invalid
// token, an unparseable subject and a deleted user are indistinguishable to
// the caller.
func (s *AuthService) Identify(ctx context.Context, accessToken string) (*model.UserResponse, error) {
	claims, err := s.signer.Verify(accessToken)
	if err != nil {
		log.Printf("identify rejected: %v", err)
		return nil, ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Printf("identify rejected: subject is not a user id")
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			log.Printf("identify rejected: user %s no longer exists", userID)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	profile := user.Public()
	return &profile, nil
}

// Refresh redeems a refresh token and mints a new access/refresh pair. The
// presented value is single-use: it is revoked by the redemption and can never
// succeed again.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrInvalidInput
	}

	userID, newValue, err := s.refresh.Redeem(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			log.Printf("refresh rejected: token absent, revoked or expired")
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			log.Printf("refresh rejected: user %s no longer exists", userID)
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	accessToken, err := s.signer.Sign(user.ID.String(), user.UserName, user.Role)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    tokenType,
		ExpiresIn:    s.signer.ExpiresIn(),
		RefreshToken: newValue,
	}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*model.TokenResponse, error) {
	accessToken, err := s.signer.Sign(user.ID.String(), user.UserName, user.Role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    tokenType,
		ExpiresIn:    s.signer.ExpiresIn(),
		RefreshToken: refreshToken,
	}, nil
}

func validateRegistration(userName, email, password string) error {
	if len(userName) < minUserNameLength || len(userName) > maxUserNameLength {
		return ErrInvalidInput
	}
	if email == "" || len(email) > maxEmailLength {
		return ErrInvalidInput
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return ErrInvalidInput
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return ErrInvalidInput
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
