package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/instaback/internal/apperrors"
)

// Refresh token fingerprint kept in users.refresh_token_hash column
type FingerprintRepo struct {
	DB DBTX
}

const setFingerprint = `-- name: SetFingerprint
UPDATE users
SET refresh_token_hash = $2
WHERE id = $1
`

func (r *FingerprintRepo) SetFingerprint(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := r.DB.Exec(ctx, setFingerprint, userID, hash)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrUserNotFound
	default:
		return nil
	}
}

const getFingerprint = `-- name: GetFingerprint
SELECT refresh_token_hash
FROM users
WHERE id = $1
`

func (r *FingerprintRepo) GetFingerprint(ctx context.Context, userID uuid.UUID) (string, error) {
	rows, _ := r.DB.Query(ctx, getFingerprint, userID)
	hash, err := pgx.CollectOneRow(rows, pgx.RowTo[*string])

	switch {
	case err == nil && hash != nil:
		return *hash, nil
	case err == nil, errors.Is(err, pgx.ErrNoRows):
		return "", apperrors.ErrSessionNotFound
	default:
		return "", fmt.Errorf("db error: %w", err)
	}
}

const swapFingerprint = `-- name: SwapFingerprint
UPDATE users
SET refresh_token_hash = $3
WHERE id = $1 AND refresh_token_hash = $2
`

// Row lock taken by UPDATE makes concurrent swaps with the same 'old' value
// serialize: the second one sees the new hash and affects zero rows
func (r *FingerprintRepo) SwapFingerprint(ctx context.Context, userID uuid.UUID, old string, next string) error {
	tag, err := r.DB.Exec(ctx, swapFingerprint, userID, old, next)
	switch {
	case err != nil:
		return fmt.Errorf("db error: %w", err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrTokenReused
	default:
		return nil
	}
}

const clearFingerprint = `-- name: ClearFingerprint
UPDATE users
SET refresh_token_hash = NULL
WHERE id = $1
`

func (r *FingerprintRepo) ClearFingerprint(ctx context.Context, userID uuid.UUID) error {
	_, err := r.DB.Exec(ctx, clearFingerprint, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
