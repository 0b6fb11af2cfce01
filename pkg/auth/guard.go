package auth

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	apperrors "roomly/pkg/errors"
	httputil "roomly/pkg/http"
)

// BearerToken extracts the raw token from the Authorization header, or
// "" when the header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Guard wraps routes that need an authenticated principal.
type Guard struct {
	tokens *TokenManager
}

func NewGuard(tokens *TokenManager) *Guard {
	return &Guard{tokens: tokens}
}

func (g *Guard) authenticate(r *http.Request) (Principal, error) {
	raw := BearerToken(r)
	if raw == "" {
		return Principal{}, apperrors.AuthRequired()
	}
	return g.tokens.Verify(raw)
}

// Require rejects unauthenticated requests and stores the principal in
// the request context for the wrapped handler.
func (g *Guard) Require(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		p, err := g.authenticate(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		next(w, r.WithContext(WithPrincipal(r.Context(), p)), ps)
	}
}

// Optional resolves a principal when an Authorization header is present
// but lets anonymous requests through. A header that is present and
// invalid is still rejected, so callers never see a half-authenticated
// request.
func (g *Guard) Optional(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if r.Header.Get("Authorization") == "" {
			next(w, r, ps)
			return
		}
		p, err := g.authenticate(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		next(w, r.WithContext(WithPrincipal(r.Context(), p)), ps)
	}
}

// RequireRoles additionally restricts the route to the given roles.
func (g *Guard) RequireRoles(next httprouter.Handle, roles ...string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		p, err := g.authenticate(r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		allowed := false
		for _, role := range roles {
			if p.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			httputil.WriteError(w, apperrors.Forbidden("forbidden"))
			return
		}

		next(w, r.WithContext(WithPrincipal(r.Context(), p)), ps)
	}
}
