package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/openriskhq/riskdeck-auth/pkg/httpx"
	"github.com/openriskhq/riskdeck-auth/pkg/jwtx"
)

type ctxKey int

// ctxKeyAccountID carries the authenticated account id through the request
// context.
const ctxKeyAccountID ctxKey = iota

// AuthnMiddleware verifies the Bearer session token and injects the account
// id into the request context.
func AuthnMiddleware(verifier jwtx.Verifier, issuer string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Missing or malformed Authorization header")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired session token")
				return
			}
			if err := claims.ValidateIssuer(issuer); err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired session token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAccountID, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accountIDFromContext returns the authenticated account id, if any.
func accountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyAccountID).(string)
	return id, ok && id != ""
}
