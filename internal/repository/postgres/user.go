package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/models"
	"github.com/nkiryanov/instaback/internal/repository"
)

const nicknameConstraint = "users_nickname_key"

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, username, password_hash, nickname)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, username, password_hash, nickname, bio, profile_image
`

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), params.Username, params.HashedPassword, params.Nickname)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		return user, uniqueViolationToAppErr(err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, username, password_hash, nickname, bio, profile_image
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT id, created_at, username, password_hash, nickname, bio, profile_image
FROM users
WHERE username = $1
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByUsername, username)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const usernameExists = `-- name: UsernameExists
SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)
`

func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	rows, _ := r.DB.Query(ctx, usernameExists, username)
	exists, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

const updateProfile = `-- name: UpdateProfile
UPDATE users
SET nickname = COALESCE($2, nickname),
    bio = COALESCE($3, bio)
WHERE id = $1
RETURNING id, created_at, username, password_hash, nickname, bio, profile_image
`

func (r *UserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateProfile, userID, upd.Nickname, upd.Bio)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, uniqueViolationToAppErr(err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.HashedPassword, &u.Nickname, &u.Bio, &u.ProfileImage)
	return u, err
}

func uniqueViolationToAppErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if pgErr.ConstraintName == nicknameConstraint {
			return apperrors.ErrNicknameTaken
		}
		return apperrors.ErrUserAlreadyExists
	}

	return fmt.Errorf("db error: %w", err)
}
