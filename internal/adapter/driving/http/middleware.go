package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"braindump/internal/application"
)

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// sessionContextKey keys the authenticated session in the request context.
type sessionContextKey struct{}

// requireSession rejects requests without a valid bearer session token and
// stores the verified session in the request context for the handler.
func requireSession(secret []byte, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := bearerSession(secret, r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing or invalid session token")
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		next(w, r.WithContext(ctx))
	}
}

// bearerSession extracts and verifies the Authorization bearer token.
func bearerSession(secret []byte, r *http.Request) (application.Session, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return application.Session{}, false
	}
	session, err := application.VerifySession(secret, token)
	if err != nil {
		return application.Session{}, false
	}
	return session, true
}

// sessionFrom returns the session stored by requireSession.
func sessionFrom(ctx context.Context) application.Session {
	session, _ := ctx.Value(sessionContextKey{}).(application.Session)
	return session
}
