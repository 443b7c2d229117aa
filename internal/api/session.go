package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// SessionHeader carries the console session id in both directions.
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

// withSession resolves the caller's session id, minting one when the header
// is missing or not a UUID, and echoes it back on the response.
func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		w.Header().Set(SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

// SessionID returns the session id stored by withSession.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
