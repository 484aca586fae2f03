package model

import (
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	UserNameOrEmail string `json:"userNameOrEmail"`
	Password        string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned by login and refresh. The business API validates
// the same accessToken format against the shared secret/issuer/audience triple.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the public profile. It never carries the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	UserName  string    `json:"userName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// AuthUser is the identity the bearer middleware stores in the request context.
type AuthUser struct {
	ID       uuid.UUID
	UserName string
	Role     string
}

type User struct {
	ID           uuid.UUID
	UserName     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func (u *User) Public() UserResponse {
	return UserResponse{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type RefreshToken struct {
	ID        int64
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
