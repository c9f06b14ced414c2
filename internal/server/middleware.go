package server

import (
	"net/http"
	"time"

	"fjacquet/fatura-extractor/internal/logging"

	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

func (s *Server) withCORS(next http.Handler) http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition", "X-Process-Id"},
		MaxAge:         600,
	}).Handler(next)
}

// throttle rejects requests beyond the shared token bucket with 429.
func (s *Server) throttle(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			s.metrics.throttled.Inc()
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F(logging.FieldStatus, rec.status),
			logging.F(logging.FieldRemote, r.RemoteAddr),
			logging.F(logging.FieldDuration, time.Since(start).String()))
	})
}
