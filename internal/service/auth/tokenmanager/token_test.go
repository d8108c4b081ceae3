package tokenmanager

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/models"
)

func Test_TokenManager(t *testing.T) {
	t.Parallel()

	testUser := models.User{
		ID:             uuid.New(),
		Username:       "testuser",
		HashedPassword: "hashed_password",
	}

	newManager := func(t *testing.T, accessTTL time.Duration, refreshTTL time.Duration) *TokenManager {
		m, err := New(Config{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     accessTTL,
			RefreshTTL:    refreshTTL,
		})
		require.NoError(t, err, "token manager should be created without errors")
		return m
	}

	t.Run("new defaults", func(t *testing.T) {
		m, err := New(Config{AccessSecret: "access", RefreshSecret: "refresh"})
		require.NoError(t, err, "token manager should be created without errors")

		require.Equal(t, "access", m.accessSecret)
		require.Equal(t, "refresh", m.refreshSecret)
		require.Equal(t, defaultAccessTokenTTL, m.accessTTL, "default access token TTL should be set")
		require.Equal(t, defaultRefreshTokenTTL, m.refreshTTL, "default refresh token TTL")
		require.Equal(t, defaultRefreshTokenTTL, m.RefreshTTL())
		require.Equal(t, defaultSigningMethod, m.codec.alg.Alg(), "default signing method should be set")
	})

	t.Run("invalid config", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  Config
		}{
			{"no access secret", Config{RefreshSecret: "refresh"}},
			{"no refresh secret", Config{AccessSecret: "access"}},
			{"same secrets", Config{AccessSecret: "secret", RefreshSecret: "secret"}},
			{"access ttl equal refresh ttl", Config{AccessSecret: "a", RefreshSecret: "r", AccessTTL: time.Hour, RefreshTTL: time.Hour}},
			{"access ttl longer than refresh ttl", Config{AccessSecret: "a", RefreshSecret: "r", AccessTTL: 2 * time.Hour, RefreshTTL: time.Hour}},
			{"access ttl longer than default refresh ttl", Config{AccessSecret: "a", RefreshSecret: "r", AccessTTL: 30 * 24 * time.Hour}},
			{"negative ttl", Config{AccessSecret: "a", RefreshSecret: "r", AccessTTL: -time.Minute}},
			{"none alg", Config{AccessSecret: "a", RefreshSecret: "r", Alg: "none"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := New(tt.cfg)

				require.Error(t, err)
			})
		}
	})

	t.Run("GeneratePair", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 24*time.Hour)

		pair, err := m.GeneratePair(testUser)

		require.NoError(t, err)
		assert.NotEmpty(t, pair.Access.Value, "access token should not be empty")
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.Access.ExpiresAt, time.Second)
		assert.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), pair.Refresh.ExpiresAt, time.Second)
	})

	t.Run("generate different tokens", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 24*time.Hour)

		pair1, err := m.GeneratePair(testUser)
		require.NoError(t, err)
		pair2, err := m.GeneratePair(testUser)
		require.NoError(t, err)

		assert.NotEqual(t, pair1.Refresh.Value, pair2.Refresh.Value, "refresh tokens should be different")
		assert.NotEqual(t, pair1.Access.Value, pair2.Access.Value, "access tokens should be different")
	})

	t.Run("ParseAccess", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 24*time.Hour)
		pair, err := m.GeneratePair(testUser)
		require.NoError(t, err)

		claims, err := m.ParseAccess(pair.Access.Value)

		require.NoError(t, err, "valid token should be parsed without errors")
		require.Equal(t, testUser.ID, claims.Subject)
		require.Equal(t, testUser.Username, claims.Username)
		require.Equal(t, models.AccessToken, claims.Kind)
	})

	t.Run("ParseRefresh", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 24*time.Hour)
		pair, err := m.GeneratePair(testUser)
		require.NoError(t, err)

		claims, err := m.ParseRefresh(pair.Refresh.Value)

		require.NoError(t, err)
		require.Equal(t, testUser.ID, claims.Subject)
		require.Equal(t, models.RefreshToken, claims.Kind)
	})

	t.Run("tokens are not interchangeable", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 24*time.Hour)
		pair, err := m.GeneratePair(testUser)
		require.NoError(t, err)

		_, err = m.ParseAccess(pair.Refresh.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "refresh token must not pass as access one")

		_, err = m.ParseRefresh(pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid, "access token must not pass as refresh one")
	})

	t.Run("expired token", func(t *testing.T) {
		m := newManager(t, 15*time.Minute, 24*time.Hour)
		pair, err := m.GeneratePair(testUser)
		require.NoError(t, err)

		m.codec.now = func() time.Time { return time.Now().Add(time.Hour) }

		_, err = m.ParseAccess(pair.Access.Value)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired, "access token has to become expired")

		_, err = m.ParseRefresh(pair.Refresh.Value)
		require.NoError(t, err, "refresh token lives longer")
	})
}
