package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/models"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Username string           `json:"username"`
	Kind     models.TokenKind `json:"kind"`
}

// Codec signs and verifies HMAC JWT tokens
// Secret is passed on every call so one codec serves both access and refresh tokens
type Codec struct {
	alg jwt.SigningMethod
	now func() time.Time
}

func NewCodec(alg string) (*Codec, error) {
	method := jwt.GetSigningMethod(alg)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing method %q, only HMAC ones allowed", alg)
	}

	return &Codec{alg: method, now: time.Now}, nil
}

// Issue signs claims with the secret. ID, IssuedAt and ExpiresAt are set by codec
func (c *Codec) Issue(claims models.TokenClaims, secret string, ttl time.Duration) (models.IssuedToken, error) {
	now := c.now().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(
		c.alg,
		tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				Subject:   claims.Subject.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			Username: claims.Username,
			Kind:     claims.Kind,
		},
	)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", claims.Kind, err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks signature, expiration and kind of the token
// Returns apperrors.ErrTokenExpired if token is expired and apperrors.ErrTokenInvalid on any other failure
func (c *Codec) Verify(token string, kind models.TokenKind, secret string) (models.TokenClaims, error) {
	claims := &tokenClaims{}

	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.TokenClaims{}, apperrors.ErrTokenExpired
	case err != nil:
		return models.TokenClaims{}, fmt.Errorf("%w: %w", apperrors.ErrTokenInvalid, err)
	case claims.Kind != kind:
		return models.TokenClaims{}, fmt.Errorf("%w: expected %s token, got %q", apperrors.ErrTokenInvalid, kind, claims.Kind)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.TokenClaims{}, fmt.Errorf("%w: bad subject: %w", apperrors.ErrTokenInvalid, err)
	}

	return models.TokenClaims{
		ID:        claims.ID,
		Kind:      claims.Kind,
		Subject:   subject,
		Username:  claims.Username,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
