package postgres

import (
	"context"
	"fmt"

	"github.com/nkiryanov/instaback/internal/repository"
)

type Storage struct {
	db DBTX

	// Optional fingerprint backend (redis for instance). Column in users table used if nil
	fingerprint repository.FingerprintRepo
}

type StorageOption func(*Storage)

// Keep refresh token fingerprints outside postgres
func WithFingerprintRepo(repo repository.FingerprintRepo) StorageOption {
	return func(s *Storage) {
		s.fingerprint = repo
	}
}

func NewStorage(db DBTX, opts ...StorageOption) *Storage {
	s := &Storage{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Fingerprint() repository.FingerprintRepo {
	if s.fingerprint != nil {
		return s.fingerprint
	}
	return &FingerprintRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(&Storage{db: tx, fingerprint: s.fingerprint})

	return err
}
