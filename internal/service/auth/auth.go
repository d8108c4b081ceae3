package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/logger"
	"github.com/nkiryanov/instaback/internal/metrics"
	"github.com/nkiryanov/instaback/internal/models"
	"github.com/nkiryanov/instaback/internal/repository"
	"github.com/nkiryanov/instaback/internal/service/auth/refreshstore"
	"github.com/nkiryanov/instaback/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

var DefaultHasher PasswordHasher = BcryptHasher{}

// Compared against when user not found, so unknown usernames cost the same bcrypt round
const dummyPassword = "dummy-password-never-matches"

type Config struct {
	// Hasher for passwords and refresh token fingerprints. DefaultHasher if nil
	Hasher PasswordHasher

	// NoOp logger if nil
	Logger logger.Logger

	// Optional
	Metrics *metrics.Auth
}

// Auth service manages user sessions: login, token rotation and logout
type AuthService struct {
	tokens   *tokenmanager.TokenManager
	hasher   PasswordHasher
	storage  repository.Storage
	sessions *refreshstore.Store

	logger  logger.Logger
	metrics *metrics.Auth

	dummyHash string
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, storage repository.Storage) (*AuthService, error) {
	if tokens == nil || storage == nil {
		return nil, errors.New("token manager and storage must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	l := cfg.Logger
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("hasher is not usable. Err: %w", err)
	}

	return &AuthService{
		tokens:    tokens,
		hasher:    hasher,
		storage:   storage,
		sessions:  refreshstore.New(storage.Fingerprint(), hasher),
		logger:    l.With("component", "auth"),
		metrics:   cfg.Metrics,
		dummyHash: dummyHash,
	}, nil
}

// Login user with username and password
// Unknown user and wrong password both fail with apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, username string, password string) (models.Session, error) {
	user, err := s.storage.User().GetUserByUsername(ctx, username)

	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		_ = s.hasher.Compare(s.dummyHash, password)
		s.metrics.Login(metrics.ResultInvalidCredentials)
		return models.Session{}, apperrors.ErrInvalidCredentials
	case err != nil:
		s.metrics.Login(metrics.ResultError)
		return models.Session{}, fmt.Errorf("error while getting user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		s.metrics.Login(metrics.ResultInvalidCredentials)
		return models.Session{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		s.metrics.Login(metrics.ResultError)
		return models.Session{}, fmt.Errorf("token could not generated, sorry. Err: %w", err)
	}

	if err := s.sessions.Set(ctx, user.ID, pair.Refresh.Value); err != nil {
		s.metrics.Login(metrics.ResultError)
		return models.Session{}, fmt.Errorf("error while saving refresh token. Err: %w", err)
	}

	s.metrics.Login(metrics.ResultOK)
	s.logger.Info("user logged in", "user_id", user.ID)

	return models.Session{Tokens: pair, User: user.Profile()}, nil
}

// Rotate tokens. Principal has to come from AuthenticateRefresh.
// Token that was rotated away already (or after logout) fails with
// apperrors.ErrTokenReused or apperrors.ErrSessionNotFound
func (s *AuthService) Refresh(ctx context.Context, principal models.RefreshPrincipal) (models.TokenPair, error) {
	user := principal.User

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		s.metrics.Refresh(metrics.ResultError)
		return pair, fmt.Errorf("token could not generated, sorry. Err: %w", err)
	}

	err = s.sessions.Replace(ctx, user.ID, principal.Token, pair.Refresh.Value)
	switch {
	case err == nil:
		s.metrics.Refresh(metrics.ResultOK)
		return pair, nil
	case errors.Is(err, apperrors.ErrSessionNotFound):
		s.metrics.Refresh(metrics.ResultSessionNotFound)
		s.logger.Info("refresh without session", "user_id", user.ID, "jti", principal.Claims.ID)
		return models.TokenPair{}, err
	case errors.Is(err, apperrors.ErrTokenReused):
		s.metrics.Refresh(metrics.ResultTokenReused)
		s.logger.Warn("refresh token reuse detected", "user_id", user.ID, "jti", principal.Claims.ID)
		return models.TokenPair{}, err
	default:
		s.metrics.Refresh(metrics.ResultError)
		return models.TokenPair{}, fmt.Errorf("error while rotating refresh token. Err: %w", err)
	}
}

// Forget refresh token of the user. Idempotent
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessions.Clear(ctx, userID); err != nil {
		return fmt.Errorf("error while clearing refresh token. Err: %w", err)
	}

	s.metrics.Logout()
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}

// Resolve user by access token
// Fails with apperrors.ErrTokenExpired, apperrors.ErrTokenInvalid or apperrors.ErrUserNotFound
func (s *AuthService) AuthenticateAccess(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return models.User{}, err
	}

	return s.storage.User().GetUserByID(ctx, claims.Subject)
}

// Resolve user by refresh token and keep the raw token for rotation
// Signature and expiration only: whether the token is still the current one is checked on Refresh
func (s *AuthService) AuthenticateRefresh(ctx context.Context, token string) (models.RefreshPrincipal, error) {
	claims, err := s.tokens.ParseRefresh(token)
	if err != nil {
		s.metrics.Refresh(metrics.ResultInvalidToken)
		return models.RefreshPrincipal{}, err
	}

	user, err := s.storage.User().GetUserByID(ctx, claims.Subject)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		s.metrics.Refresh(metrics.ResultInvalidToken)
		return models.RefreshPrincipal{}, err
	default:
		s.metrics.Refresh(metrics.ResultError)
		return models.RefreshPrincipal{}, fmt.Errorf("error while getting refresh token owner. Err: %w", err)
	}

	return models.RefreshPrincipal{User: user, Claims: claims, Token: token}, nil
}
