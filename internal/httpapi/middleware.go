package httpapi

import (
	"log"
	"net/http"
	"time"
)

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s from=%s dur=%s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}

// adminKeyMiddleware gates the dashboard behind a shared key in the
// X-Admin-Key header. An empty configured key disables the gate — real
// authentication is delegated to the deployment in front of this server.
func adminKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key != "" && r.Header.Get("X-Admin-Key") != key {
				writeError(w, http.StatusUnauthorized, "unauthorized", "admin key required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
