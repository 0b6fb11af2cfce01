package auth

import (
	"context"

	"roomly/pkg/model"
)

// Principal is the authenticated caller as carried by a verified token.
type Principal struct {
	ID       int64
	Username string
	Role     string
}

func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

type contextKey string

const principalKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
