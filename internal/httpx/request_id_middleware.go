package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	// maxRequestIDLen bounds client-supplied ids before they reach the logs.
	maxRequestIDLen = 128
)

// RequestIDMiddleware reuses the caller's X-Request-Id when it is usable and
// otherwise assigns a new UUID. The id is echoed in the response header and
// stored in the request context for RequestIDFrom.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if !usableRequestID(requestID) {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), requestID)))
	})
}

// usableRequestID accepts non-empty printable ASCII ids up to maxRequestIDLen.
func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
