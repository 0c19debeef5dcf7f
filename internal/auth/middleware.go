package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the username value.
type contextKey string

const usernameKey contextKey = "username"

// RequireAuth enforces authentication on protected routes.
//
// It reads the session cookie, validates the token, and stores the username
// in the request context, the per-request session object every protected
// operation receives. Missing or invalid token → 401, request chain stops.
// There is no redirect here; the API returns 401 and the frontend decides
// where to send the user.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := extractUsername(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"login required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext retrieves the authenticated username from the request
// context. Returns ("", false) for an anonymous request.
func UsernameFromContext(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(usernameKey).(string)
	return u, ok && u != ""
}

// extractUsername reads the session cookie and validates its token.
func extractUsername(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		// http.ErrNoCookie: no session at all, anonymous.
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
