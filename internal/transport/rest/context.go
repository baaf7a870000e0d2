package rest

import "context"

type ctxKeyAuth struct{}

// AuthContext carries the verified caller identity. UserID is the identity
// provider's opaque subject, not a local key.
type AuthContext struct {
	UserID string
	Email  string
	Name   string
}

func withAuth(ctx context.Context, a AuthContext) context.Context {
	return context.WithValue(ctx, ctxKeyAuth{}, a)
}

func GetAuth(ctx context.Context) (AuthContext, bool) {
	a, ok := ctx.Value(ctxKeyAuth{}).(AuthContext)
	if !ok || a.UserID == "" {
		return AuthContext{}, false
	}
	return a, true
}
