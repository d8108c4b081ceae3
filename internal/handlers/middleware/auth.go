package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/handlers/render"
	"github.com/nkiryanov/instaback/internal/handlers/userctx"
	"github.com/nkiryanov/instaback/internal/models"
)

const bearerScheme = "bearer"

type accessAuthenticator interface {
	AuthenticateAccess(ctx context.Context, token string) (models.User, error)
}

type refreshAuthenticator interface {
	AuthenticateRefresh(ctx context.Context, token string) (models.RefreshPrincipal, error)
}

// AccessGuard lets through requests with valid access token and puts its owner to the context
// Failures other than auth ones are logged with l and answered with 500
func AccessGuard(a accessAuthenticator, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := a.AuthenticateAccess(r.Context(), token)
			if err != nil {
				authError(w, l, err)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RefreshGuard lets through requests with valid refresh token
// Owner and the raw token are put to the context, it's up to handler to check token was not rotated already
func RefreshGuard(a refreshAuthenticator, l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := a.AuthenticateRefresh(r.Context(), token)
			if err != nil {
				authError(w, l, err)
				return
			}

			ctx := userctx.NewRefresh(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Extract token from 'Authorization: Bearer <token>' header
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func authError(w http.ResponseWriter, l logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTokenExpired):
		render.ServiceError(w, "Token expired", http.StatusUnauthorized)
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrUserNotFound):
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
	default:
		l.Error("authentication failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
