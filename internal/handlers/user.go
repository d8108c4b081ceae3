package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/nkiryanov/instaback/internal/apperrors"
	"github.com/nkiryanov/instaback/internal/handlers/render"
	"github.com/nkiryanov/instaback/internal/handlers/userctx"
	"github.com/nkiryanov/instaback/internal/logger"
	"github.com/nkiryanov/instaback/internal/models"
	"github.com/nkiryanov/instaback/internal/service/user"
)

type profileResponse struct {
	Message string         `json:"message"`
	User    models.Profile `json:"user"`
}

func handleSignup(userService userService, logger logger.Logger) http.Handler {
	type request struct {
		Username        string `json:"username" validate:"required,min=4,max=20,username"`
		Password        string `json:"password" validate:"required,min=8,max=20,password"`
		ConfirmPassword string `json:"confirmPassword" validate:"required"`
		Nickname        string `json:"nickname" validate:"required,min=2,max=20,nickname"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		profile, err := userService.Signup(r.Context(), user.SignupParams(data))
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrPasswordMismatch):
			render.ServiceError(w, "Passwords do not match", http.StatusBadRequest)
			return
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Username already taken", http.StatusConflict)
			return
		case errors.Is(err, apperrors.ErrNicknameTaken):
			render.ServiceError(w, "Nickname already taken", http.StatusConflict)
			return
		default:
			logger.Error("signup failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSONWithStatus(w, profileResponse{Message: "Signup successful", User: profile}, http.StatusCreated)
	})
}

func handleCheckUsername(userService userService, logger logger.Logger) http.Handler {
	type response struct {
		Available bool   `json:"available"`
		Message   string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.URL.Query().Get("username"))
		if username == "" {
			render.ServiceError(w, "Username is required", http.StatusBadRequest)
			return
		}

		available, err := userService.UsernameAvailable(r.Context(), username)
		if err != nil {
			logger.Error("username check failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if !available {
			render.JSON(w, response{Available: false, Message: "Username already taken"})
			return
		}
		render.JSON(w, response{Available: true, Message: "Username is available"})
	})
}

// Has to be wrapped with AccessGuard
func handleUserMe(userService userService, logger logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := userctx.FromContext(r.Context())

		profile, err := userService.GetProfile(r.Context(), u.ID)
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusUnauthorized)
			return
		default:
			logger.Error("get profile failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, profile)
	})
}

// Has to be wrapped with AccessGuard
func handleUpdateMe(userService userService, logger logger.Logger) http.Handler {
	type request struct {
		Nickname *string `json:"nickname" validate:"omitempty,min=2,max=20,nickname"`
		Bio      *string `json:"bio" validate:"omitempty,max=150"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := userctx.FromContext(r.Context())

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		profile, err := userService.UpdateProfile(r.Context(), u.ID, models.ProfileUpdate(data))
		switch {
		case err == nil:
		case errors.Is(err, apperrors.ErrNicknameTaken):
			render.ServiceError(w, "Nickname already taken", http.StatusConflict)
			return
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusUnauthorized)
			return
		default:
			logger.Error("profile update failed", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, profileResponse{Message: "Profile updated", User: profile})
	})
}
