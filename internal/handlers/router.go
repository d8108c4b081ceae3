package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/instaback/internal/handlers/middleware"
	"github.com/nkiryanov/instaback/internal/logger"
	"github.com/nkiryanov/instaback/internal/models"
	"github.com/nkiryanov/instaback/internal/service/user"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter builds the http handler of the service
// metricsHandler is optional, /metrics is not mounted when it is nil
func NewRouter(
	authService authService,
	userService userService,
	metricsHandler http.Handler,
	logger logger.Logger,
) http.Handler {
	withAccess := middleware.AccessGuard(authService, logger)
	withRefresh := middleware.RefreshGuard(authService, logger)

	api := http.NewServeMux()

	api.Handle("POST /login", handleLogin(authService, logger))
	api.Handle("POST /refresh", withRefresh(handleRefresh(authService, logger)))
	api.Handle("POST /logout", withAccess(handleLogout(authService, logger)))

	api.Handle("POST /signup", handleSignup(userService, logger))
	api.Handle("GET /check-id", handleCheckUsername(userService, logger))
	api.Handle("GET /me", withAccess(handleUserMe(userService, logger)))
	api.Handle("PATCH /me", withAccess(handleUpdateMe(userService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if metricsHandler != nil {
		root.Handle("GET /metrics", metricsHandler)
	}

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Login user with username and password
	// Has to return apperrors.ErrInvalidCredentials if user not found or password is wrong
	Login(ctx context.Context, username string, password string) (models.Session, error)

	// Rotate tokens of already authenticated refresh token owner
	// Has to return apperrors.ErrSessionNotFound if user logged out
	// Has to return apperrors.ErrTokenReused if token was rotated already
	Refresh(ctx context.Context, principal models.RefreshPrincipal) (models.TokenPair, error)

	// Drop user session, so refresh tokens issued before are not accepted anymore
	Logout(ctx context.Context, userID uuid.UUID) error

	AuthenticateAccess(ctx context.Context, token string) (models.User, error)
	AuthenticateRefresh(ctx context.Context, token string) (models.RefreshPrincipal, error)
}

type userService interface {
	// Has to return apperrors.ErrUserAlreadyExists or apperrors.ErrNicknameTaken on conflicts
	Signup(ctx context.Context, params user.SignupParams) (models.Profile, error)
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (models.Profile, error)
}
