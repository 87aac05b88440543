package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ticketContextKey struct{}

// TicketFromContext returns the bearer ticket stored by [Ticket], if any.
func TicketFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(ticketContextKey{}).(string)
	return t, ok && t != ""
}

// Ticket stores an "Authorization: Bearer <ticket>" value in the request
// context. Requests without one pass through untouched; the engine decides
// whether a ticket is required.
func Ticket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), ticketContextKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
