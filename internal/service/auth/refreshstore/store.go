package refreshstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/repository"
)

type hasher interface {
	Hash(value string) (string, error)
	Compare(hashed string, value string) error
}

// Store keeps a one-way fingerprint of the only valid refresh token of each user
type Store struct {
	repo   repository.FingerprintRepo
	hasher hasher
}

func New(repo repository.FingerprintRepo, hasher hasher) *Store {
	return &Store{repo: repo, hasher: hasher}
}

// Replace stored fingerprint (if any) with the one of the token
func (s *Store) Set(ctx context.Context, userID uuid.UUID, token string) error {
	hash, err := s.hasher.Hash(token)
	if err != nil {
		return fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	return s.repo.SetFingerprint(ctx, userID, hash)
}

// Report whether token matches the stored fingerprint
// Absent fingerprint is not an error: just no match
func (s *Store) Matches(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	hash, err := s.repo.GetFingerprint(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	return s.hasher.Compare(hash, token) == nil, nil
}

// Replace rotates the fingerprint from 'presented' token to 'next' one.
// Fails with apperrors.ErrSessionNotFound if nothing stored
// and with apperrors.ErrTokenReused if presented token is not the current one.
// Of concurrent calls with the same presented token only one succeeds
func (s *Store) Replace(ctx context.Context, userID uuid.UUID, presented string, next string) error {
	current, err := s.repo.GetFingerprint(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(current, presented); err != nil {
		return apperrors.ErrTokenReused
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("error while hashing refresh token. Err: %w", err)
	}

	return s.repo.SwapFingerprint(ctx, userID, current, hash)
}

// Forget the fingerprint; logging out twice is fine
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearFingerprint(ctx, userID)
}
