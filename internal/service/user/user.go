package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/models"
	"github.com/nkiryanov/instaback/internal/repository"
	"github.com/nkiryanov/instaback/internal/service/auth"
)

type SignupParams struct {
	Username        string
	Password        string
	ConfirmPassword string
	Nickname        string
}

type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Create user account
// Fails with apperrors.ErrPasswordMismatch, apperrors.ErrUserAlreadyExists or apperrors.ErrNicknameTaken
func (s *UserService) Signup(ctx context.Context, params SignupParams) (models.Profile, error) {
	if params.Password != params.ConfirmPassword {
		return models.Profile{}, apperrors.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return models.Profile{}, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	// Own transaction: failed insert must not break the one caller may be in
	var user models.User
	err = s.storage.InTx(ctx, func(tx repository.Storage) error {
		var err error
		user, err = tx.User().CreateUser(ctx, repository.CreateUserParams{
			Username:       params.Username,
			HashedPassword: hash,
			Nickname:       params.Nickname,
		})
		return err
	})
	if err != nil {
		return models.Profile{}, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user.Profile(), nil
}

// Report whether username is free to use
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	exists, err := s.storage.User().UsernameExists(ctx, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(), nil
}

// Update nickname and bio. Fails with apperrors.ErrNicknameTaken if nickname is used by someone else
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (models.Profile, error) {
	var user models.User
	err := s.storage.InTx(ctx, func(tx repository.Storage) error {
		var err error
		user, err = tx.User().UpdateProfile(ctx, userID, upd)
		return err
	})
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(), nil
}
