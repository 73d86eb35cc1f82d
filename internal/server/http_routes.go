package server

import (
	"net/http"
	"strings"

	"qaforge/internal/observability"
)

// setupRoutes wires the endpoints to their middleware chains. The generation
// endpoints go through rate limiting and auth; the resume upload additionally
// gets a body size cap.
func (s *Server) setupRoutes(om *observability.ObservabilityManager) *http.ServeMux {
	mux := http.NewServeMux()

	rateLimited := s.createRateLimitMiddleware(om)
	sizeLimited := s.requestSizeLimitMiddleware()

	mux.HandleFunc("/", s.rootHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/generate_questions",
		rateLimited(s.authMiddleware(s.createRoleQuestionsHandler(om))))
	mux.HandleFunc("/generate_questions_from_resume",
		rateLimited(s.authMiddleware(sizeLimited(s.createResumeQuestionsHandler(om)))))

	return mux
}

// apiKeyFromRequest reads the client key from X-API-Key, falling back to an
// Authorization Bearer token. Empty string when neither is present.
func apiKeyFromRequest(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}

// authMiddleware enforces API key auth. With no keys configured the server
// is open and the middleware passes everything through.
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := apiKeyFromRequest(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr)
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", r.RemoteAddr,
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"client_ip", r.RemoteAddr,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// requestSizeLimitMiddleware caps the request body at the upload limit plus
// headroom for multipart framing. The exact file limit is enforced in the
// handler.
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxFileSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxFileSize+64*1024)
			}
			next(w, r)
		}
	}
}

// maskAPIKey keeps only the first 8 characters of a key for log output.
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
