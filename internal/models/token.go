package models

import (
	"time"

	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issues by TokenManager, AuthService
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}

// Verified token payload
type TokenClaims struct {
	ID        string
	Kind      TokenKind
	Subject   uuid.UUID
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Result of successful login
type Session struct {
	Tokens TokenPair
	User   Profile
}

// Owner of a verified refresh token together with the raw token itself.
// The raw value is needed later to check it against stored fingerprint
type RefreshPrincipal struct {
	User   User
	Claims TokenClaims
	Token  string
}
