package middleware

import (
	"io"
	"net/http"
)

// leftovers past this are not worth reading, the connection just won't be reused
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest drains what the handler left of the request body and closes it,
// so keep-alive connections can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
				_ = r.Body.Close()
			}
		})
	}
}
