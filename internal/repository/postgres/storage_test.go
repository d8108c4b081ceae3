package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/repository"
	redisrepo "github.com/nkiryanov/instaback/internal/repository/redis"
	"github.com/nkiryanov/instaback/internal/testutil"
)

func Test_Storage(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	params := repository.CreateUserParams{Username: "alice", HashedPassword: "hash", Nickname: "alice"}

	t.Run("fingerprint in users table by default", func(t *testing.T) {
		s := NewStorage(pg.Pool)

		require.IsType(t, &FingerprintRepo{}, s.Fingerprint())
	})

	t.Run("fingerprint repo may be replaced", func(t *testing.T) {
		client, _ := testutil.StartRedis(t)
		fp, err := redisrepo.NewFingerprintRepo(client, "", time.Hour)
		require.NoError(t, err)

		s := NewStorage(pg.Pool, WithFingerprintRepo(fp))

		require.Same(t, fp, s.Fingerprint())
	})

	t.Run("commit tx", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)

			err := s.InTx(t.Context(), func(s repository.Storage) error {
				_, err := s.User().CreateUser(t.Context(), params)
				return err
			})
			require.NoError(t, err)

			_, err = s.User().GetUserByUsername(t.Context(), "alice")
			require.NoError(t, err, "user must be stored after commit")
		})
	})

	t.Run("rollback tx on error", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			s := NewStorage(tx)
			fail := errors.New("fail")

			err := s.InTx(t.Context(), func(s repository.Storage) error {
				_, err := s.User().CreateUser(t.Context(), params)
				require.NoError(t, err)
				return fail
			})
			require.ErrorIs(t, err, fail)

			_, err = s.User().GetUserByUsername(t.Context(), "alice")
			require.ErrorIs(t, err, apperrors.ErrUserNotFound, "user must not be stored after rollback")
		})
	})
}
