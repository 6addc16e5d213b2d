package httpapi

import (
	"context"
	"net/http"
	"strings"

	"minventory/internal/common"
	"minventory/internal/server/session"
)

type ctxKey int

const sessionKey ctxKey = iota

// withSession resolves the bearer token to a live session and attaches it
// to the request context. No token, a bad token and an expired session all
// read the same to the client.
func (a *API) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, common.ErrInvalidToken)
			return
		}

		sess, err := a.auth.SessionFromToken(token)
		if err != nil {
			writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// requireFullAuth fences everything behind two-factor verification for
// accounts that have it enabled.
func (a *API) requireFullAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r).FullyAuthenticated() {
			writeError(w, common.ErrTwoFactorRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionFrom returns the session attached by withSession. Routes reaching
// this without the middleware are a programming error.
func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey).(*session.Session)
}
