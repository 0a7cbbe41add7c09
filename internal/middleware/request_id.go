package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RequestID stamps every request and response with a correlation id so
// log lines for one operation can be tied together. Incoming ids are
// trusted as-is; absent ones are minted.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := incomingRequestID(r)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			r.Header.Set("X-Request-Id", requestID)
			w.Header().Set("X-Request-Id", requestID)
			next.ServeHTTP(w, r)
		})
	}
}

func incomingRequestID(r *http.Request) string {
	for _, key := range []string{"X-Request-Id", "X-Correlation-Id"} {
		if value := strings.TrimSpace(r.Header.Get(key)); value != "" {
			return value
		}
	}
	return ""
}
