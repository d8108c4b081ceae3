package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/instaback/internal/models"
)

type CreateUserParams struct {
	Username       string
	HashedPassword string
	Nickname       string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	// If nickname is taken has to return apperrors.ErrNicknameTaken
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	UsernameExists(ctx context.Context, username string) (bool, error)

	// Update nickname and bio; nil fields are kept as is
	// If nickname is taken has to return apperrors.ErrNicknameTaken
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (models.User, error)
}

// Storage of the single refresh token fingerprint (hash) per user
type FingerprintRepo interface {
	// Overwrite the fingerprint unconditionally
	// If user not found must return apperrors.ErrUserNotFound
	SetFingerprint(ctx context.Context, userID uuid.UUID, hash string) error

	// Return stored fingerprint
	// If nothing stored must return apperrors.ErrSessionNotFound
	GetFingerprint(ctx context.Context, userID uuid.UUID) (string, error)

	// Replace fingerprint only if the stored one still equals 'old'
	// If stored one differs (or cleared) must return apperrors.ErrTokenReused
	SwapFingerprint(ctx context.Context, userID uuid.UUID, old string, next string) error

	// Remove fingerprint. Removing absent fingerprint is not an error
	ClearFingerprint(ctx context.Context, userID uuid.UUID) error
}

type Storage interface {
	User() UserRepo
	Fingerprint() FingerprintRepo

	// Run fn in transaction. Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
