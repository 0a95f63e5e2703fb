package httppresentation

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	appauth "github.com/kursant77/ajabo-f69de2d8/internal/application/auth"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"
)

type claimsKey struct{}

// requireRole admits requests carrying a valid staff token with one of the roles.
// EventSource cannot set headers, so the token may also arrive as ?access_token=.
func (h *Handler) requireRole(roles ...appauth.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if h.deps.Auth == nil {
				writeDomainError(w, errUnavailable)
				return
			}
			token := bearerToken(r)
			if token == "" {
				writeDomainError(w, appauth.ErrInvalidToken)
				return
			}
			claims, err := h.deps.Auth.Verify(token)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			if !claims.Allows(roles...) {
				writeDomainError(w, appauth.ErrForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			ctx = logctx.Append(ctx, h.log,
				observability.F("staff", claims.Subject),
				observability.F("role", string(claims.Role)),
			)
			next(w, r.WithContext(ctx))
		}
	}
}

func claimsFromContext(ctx context.Context) *appauth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*appauth.Claims)
	return c
}

func bearerToken(r *http.Request) string {
	if v := r.Header.Get("Authorization"); v != "" {
		scheme, token, ok := strings.Cut(v, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

// requireAPIKey guards the routes the Telegram bot calls.
func (h *Handler) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.deps.APIKey == "" {
			writeDomainError(w, errUnavailable)
			return
		}
		got := r.Header.Get(headerAPIKey)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.deps.APIKey)) != 1 {
			writeDomainError(w, appauth.ErrInvalidToken)
			return
		}
		next(w, r)
	}
}
