package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PaddyAlton/bigquery-mcp/pkg/metrics"
)

// httpHandler builds the HTTP mux: the MCP endpoint plus health and metrics
// endpoints. All routes are wrapped in the metrics middleware; the MCP
// endpoint is additionally wrapped in bearer-token auth when tokens are
// configured.
func (s *Server) httpHandler() http.Handler {
	mux := http.NewServeMux()

	mcpHandler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.mcp
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	var handler http.Handler = mcpHandler
	if len(s.cfg.Server.Tokens) > 0 {
		handler = s.authMiddleware(handler)
	}
	mux.Handle("/", s.metricsMiddleware(handler))

	mux.Handle("/healthz", s.metricsMiddleware(s.checker.LivenessHandler()))
	mux.Handle("/readyz", s.metricsMiddleware(s.checker.ReadinessHandler()))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// authMiddleware wraps an HTTP handler with bearer-token authentication
// against the configured allow-list.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, reason := bearerToken(r)
		if reason != "" {
			s.rejectRequest(w, reason)
			return
		}

		for _, allowed := range s.cfg.Server.Tokens {
			if token == allowed {
				next.ServeHTTP(w, r)
				return
			}
		}
		s.rejectRequest(w, "invalid_token")
	})
}

// bearerToken extracts the bearer token from a request, returning a
// rejection reason when absent or malformed.
func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "missing_header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", "invalid_format"
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", "empty_token"
	}
	return token, ""
}

// rejectRequest records an auth failure and responds 401.
func (s *Server) rejectRequest(w http.ResponseWriter, reason string) {
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	w.Header().Set("WWW-Authenticate", `Bearer`)
	w.WriteHeader(http.StatusUnauthorized)
	if _, err := w.Write([]byte("unauthorized\n")); err != nil {
		s.log.Error("failed to write auth error response", "error", err)
	}
}

// metricsMiddleware wraps an HTTP handler with request metrics collection.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method, r.URL.Path, fmt.Sprintf("%d", wrapped.statusCode),
		).Inc()
		metrics.HTTPRequestDuration.Observe(time.Since(start).Seconds())
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}
