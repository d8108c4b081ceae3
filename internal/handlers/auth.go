package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/handlers/render"
	"github.com/nkiryanov/instaback/internal/handlers/userctx"
	"github.com/nkiryanov/instaback/internal/logger"
	"github.com/nkiryanov/instaback/internal/models"
)

type tokensResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func newTokensResponse(pair models.TokenPair) tokensResponse {
	return tokensResponse{AccessToken: pair.Access.Value, RefreshToken: pair.Refresh.Value}
}

func handleLogin(authService authService, logger logger.Logger) http.Handler {
	type request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
		tokensResponse
		User models.Profile `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		session, err := authService.Login(r.Context(), data.Username, data.Password)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		default:
			logger.Error("login failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{
			Message:        "Login successful",
			tokensResponse: newTokensResponse(session.Tokens),
			User:           session.User,
		})
	})
}

// Has to be wrapped with RefreshGuard
func handleRefresh(authService authService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := userctx.RefreshFromContext(r.Context())
		if !ok {
			logger.Error("refresh principal not found in context, is RefreshGuard attached?")
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		pair, err := authService.Refresh(r.Context(), principal)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrSessionNotFound), errors.Is(err, apperrors.ErrTokenReused):
			// Same answer for both, so client can't learn session state
			render.ServiceError(w, "Access denied", http.StatusForbidden)
			return
		default:
			logger.Error("refresh failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, newTokensResponse(pair))
	})
}

// Has to be wrapped with AccessGuard
func handleLogout(authService authService, logger logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			logger.Error("user not found in context, is AccessGuard attached?")
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := authService.Logout(r.Context(), user.ID); err != nil {
			logger.Error("logout failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Message: "Logout successful"})
	})
}
