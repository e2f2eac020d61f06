package middleware

import (
	"net/http"

	"github.com/2beens/zenith/pkg"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Tracef(" ====> request [%s] path: [%s] [ip: %s] [UA: %s]", r.Method, r.URL.Path, pkg.ClientIP(r), r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r)
		})
	}
}
