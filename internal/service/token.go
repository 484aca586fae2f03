package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	minSecretLength = 32
	expiryLeeway    = 60 * time.Second
)

// Distinct verification failure reasons. Callers log these; clients only ever
// see a generic unauthorized response.
var (
	ErrBadSignature = errors.New("token signature invalid")
	ErrBadIssuer    = errors.New("token issuer mismatch")
	ErrBadAudience  = errors.New("token audience mismatch")
	ErrTokenExpired = errors.New("token expired or missing expiry")
)

// AccessClaims is the validated claim set of an access token.
type AccessClaims struct {
	Subject   string
	UserName  string
	Role      string
	ExpiresAt time.Time
}

// TokenSigner mints and verifies HS256 access tokens. Verification is pure
// computation against the shared secret/issuer/audience triple, so any service
// configured with the same triple can validate tokens without a store lookup.
type TokenSigner struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewTokenSigner(secret, issuer, audience string, ttl time.Duration) (*TokenSigner, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("%w: JWT_SECRET must be at least %d bytes", ErrMisconfigured, minSecretLength)
	}
	return &TokenSigner{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}, nil
}

// ExpiresIn is the access token lifetime in seconds, as reported to clients.
func (s *TokenSigner) ExpiresIn() int64 {
	return int64(s.ttl.Seconds())
}

// Sign issues a compact token with the claim set {sub, name, role, iss, aud,
// iat, exp}, expiring ttl from now. MapClaims keeps aud a plain string on the
// wire, which the relying services compare verbatim.
func (s *TokenSigner) Sign(subject, userName, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"name": userName,
		"role": role,
		"iss":  s.issuer,
		"aud":  s.audience,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature first and fails closed before looking at any
// claim, then validates issuer, audience and expiry in that order. Expiry gets
// a 60s leeway so independently-deployed verifiers tolerate clock skew.
func (s *TokenSigner) Verify(tokenStr string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrBadSignature
	}

	if iss, err := claims.GetIssuer(); err != nil || iss != s.issuer {
		return nil, ErrBadIssuer
	}

	aud, err := claims.GetAudience()
	if err != nil || !containsAudience(aud, s.audience) {
		return nil, ErrBadAudience
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrTokenExpired
	}
	if time.Now().After(exp.Add(expiryLeeway)) {
		return nil, ErrTokenExpired
	}

	subject, _ := claims.GetSubject()
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	return &AccessClaims{
		Subject:   subject,
		UserName:  name,
		Role:      role,
		ExpiresAt: exp.Time,
	}, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
