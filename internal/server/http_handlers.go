package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	qaforgeErrors "qaforge/internal/errors"
	"qaforge/internal/types"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	timeout := s.AppConfig.Observability.HealthCheck.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return timeout
}

// rootHandler lists the available endpoints
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "qaforge",
		"version": s.Version,
		"endpoints": map[string]string{
			"GET /generate_questions?role=<role>":  "Generate interview questions for a job role",
			"POST /generate_questions_from_resume": "Generate interview questions from an uploaded resume (multipart field 'file')",
			"GET /health":                          "Health check including backend model status",
			"GET /stats":                           "Server statistics",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode index response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// healthHandler provides a comprehensive health check endpoint including
// backend model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "qaforge",
		"version": s.Version,
	}

	// Check backend model availability for both request kinds
	backendStatus := s.checkBackendsHealth()
	response["backends"] = backendStatus

	// Circuit breaker state per backend
	response["circuit_breakers"] = s.checkCircuitBreakerHealth()

	// Prompt watcher status when hot-reload is enabled
	if s.PromptWatcher != nil {
		response["prompt_reload"] = map[string]any{
			"enabled":       true,
			"running":       s.PromptWatcher.IsRunning(),
			"watched_files": s.PromptWatcher.WatchedFiles(),
		}
	}

	// Determine overall health status
	overallHealthy := true
	for _, status := range backendStatus {
		if modelInfo, ok := status.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkBackendsHealth reports model availability for each request kind
func (s *Server) checkBackendsHealth() map[string]any {
	ctx, cancel := context.WithTimeout(context.Background(), s.getHealthCheckTimeout())
	defer cancel()

	backendStatus := make(map[string]any)
	for _, kind := range []types.RequestKind{types.KindRole, types.KindResume} {
		svc, ok := s.Services[kind]
		if !ok {
			backendStatus[string(kind)] = map[string]any{
				"available": false,
				"error":     "Generation backend is not configured",
			}
			continue
		}

		modelInfo := svc.GetModelInfo(ctx)
		backendStatus[string(kind)] = map[string]any{
			"available": modelInfo.Available,
			"backend":   modelInfo.Backend,
			"model":     modelInfo.Name,
			"error":     modelInfo.Error,
		}
	}

	return backendStatus
}

// checkCircuitBreakerHealth reports circuit breaker state for each backend
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)
	for kind, svc := range s.Services {
		circuitBreakerStatus[string(kind)] = svc.GetCircuitBreakerStats()
	}
	return circuitBreakerStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "qaforge",
		"version": s.Version,
		"server": map[string]any{
			"max_file_size_bytes": s.MaxFileSize,
		},
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add configuration info
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	// Circuit breaker details per backend
	response["circuit_breakers"] = s.checkCircuitBreakerHealth()

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// statusCodeForError maps an error to an HTTP status code by error type
func statusCodeForError(err error) int {
	switch qaforgeErrors.GetType(err) {
	case qaforgeErrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case qaforgeErrors.ErrorTypeExtraction:
		return http.StatusBadRequest
	case qaforgeErrors.ErrorTypeBackend:
		return http.StatusServiceUnavailable
	case qaforgeErrors.ErrorTypeConfig:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorLabelForType returns the short error label used in responses
func errorLabelForType(typ qaforgeErrors.ErrorType) string {
	switch typ {
	case qaforgeErrors.ErrorTypeValidation:
		return "Invalid request"
	case qaforgeErrors.ErrorTypeExtraction:
		return "Extraction failed"
	case qaforgeErrors.ErrorTypeBackend:
		return "Backend unavailable"
	case qaforgeErrors.ErrorTypeConfig:
		return "Configuration error"
	default:
		return "Internal error"
	}
}

// writeAppErrorResponse maps an application error to the right HTTP status
// and writes the standard error body
func writeAppErrorResponse(w http.ResponseWriter, err error) {
	typ := qaforgeErrors.GetType(err)
	writeErrorResponse(w, errorLabelForType(typ), err.Error(), statusCodeForError(err))
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
