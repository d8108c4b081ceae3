package tokenmanager

import (
	"errors"
	"fmt"
	"time"

	"github.com/nkiryanov/instaback/internal/models"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultSigningMethod   = "HS256"
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token manager with sensible default
type Config struct {
	// Secrets to sign access and refresh tokens
	// Both required and must differ, so refresh token never passes as access one and vice versa
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used. Access one must be shorter
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type TokenManager struct {
	codec *Codec

	accessSecret  string
	refreshSecret string

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*TokenManager, error) {
	switch {
	case cfg.AccessSecret == "" || cfg.RefreshSecret == "":
		return nil, errors.New("access and refresh secrets must not be empty")
	case cfg.AccessSecret == cfg.RefreshSecret:
		return nil, errors.New("access and refresh secrets must differ")
	case cfg.AccessTTL < 0 || cfg.RefreshTTL < 0:
		return nil, errors.New("token TTL must not be negative")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	if cfg.AccessTTL >= cfg.RefreshTTL {
		return nil, fmt.Errorf("access TTL (%s) must be shorter than refresh TTL (%s)", cfg.AccessTTL, cfg.RefreshTTL)
	}

	codec, err := NewCodec(cfg.Alg)
	if err != nil {
		return nil, err
	}

	return &TokenManager{
		codec:         codec,
		accessSecret:  cfg.AccessSecret,
		refreshSecret: cfg.RefreshSecret,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}, nil
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// Issue new access and refresh tokens for the user
func (m *TokenManager) GeneratePair(user models.User) (models.TokenPair, error) {
	var pair models.TokenPair
	claims := models.TokenClaims{Subject: user.ID, Username: user.Username}

	claims.Kind = models.AccessToken
	access, err := m.codec.Issue(claims, m.accessSecret, m.accessTTL)
	if err != nil {
		return pair, err
	}

	claims.Kind = models.RefreshToken
	refresh, err := m.codec.Issue(claims, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return pair, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse and validate access token
func (m *TokenManager) ParseAccess(token string) (models.TokenClaims, error) {
	return m.codec.Verify(token, models.AccessToken, m.accessSecret)
}

// Parse and validate refresh token
// It says nothing about whether the token was rotated already, check fingerprint for that
func (m *TokenManager) ParseRefresh(token string) (models.TokenClaims, error) {
	return m.codec.Verify(token, models.RefreshToken, m.refreshSecret)
}
