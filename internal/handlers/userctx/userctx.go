package userctx

import (
	"context"

	"github.com/nkiryanov/instaback/internal/models"
)

type ctxKey string

const (
	userKey    ctxKey = "user"
	refreshKey ctxKey = "refresh"
)

// Create a new context with the user
func New(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Extract the user from the context
func FromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// Create a new context with verified refresh token and its owner
func NewRefresh(ctx context.Context, p models.RefreshPrincipal) context.Context {
	return context.WithValue(ctx, refreshKey, p)
}

func RefreshFromContext(ctx context.Context) (models.RefreshPrincipal, bool) {
	p, ok := ctx.Value(refreshKey).(models.RefreshPrincipal)
	return p, ok
}
