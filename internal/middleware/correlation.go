package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// CorrelationIDHeader carries the correlation id on requests and responses.
const CorrelationIDHeader = "X-Request-ID"

// maxCorrelationIDLength bounds client-supplied ids.
const maxCorrelationIDLength = 128

type correlationKey struct{}

// CorrelationIDMiddleware assigns every request a correlation id. A well-formed
// id supplied by the client is kept, otherwise a new UUID is generated. The id
// is echoed back in the response header.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationIDHeader)
		if !validCorrelationID(id) {
			id = uuid.NewString()
		}

		w.Header().Set(CorrelationIDHeader, id)
		ctx := context.WithValue(r.Context(), correlationKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationID returns the id assigned by CorrelationIDMiddleware, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func validCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
