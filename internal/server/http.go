package server

import (
	"time"

	"qaforge/internal/ai"
	"qaforge/internal/config"
	qaforgeErrors "qaforge/internal/errors"
	"qaforge/internal/types"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Resume upload size cap in bytes
	MaxFileSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *LimiterManager

	// Generation services, one per request kind. Built once at startup so
	// circuit breaker state survives across requests. A missing entry means
	// the backend for that kind could not be configured.
	Services map[types.RequestKind]*ai.Service

	// Prompt hot-reload
	PromptWatcher *config.PromptWatcher

	// Logger
	Logger *qaforgeErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host         string
	Port         string
	Version      string
	TLSConfig    config.TLSConfig
	APIKeys      []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxFileSize  int64
	RateLimit    *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *qaforgeErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *LimiterManager
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Version:      cfg.Version,
		AppConfig:    appCfg,
		TLSConfig:    cfg.TLSConfig,
		APIKeys:      apiKeyMap,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		MaxFileSize:  cfg.MaxFileSize,
		RateLimit:    cfg.RateLimit,
		RateLimiter:  rateLimiter,
		Services:     make(map[types.RequestKind]*ai.Service),
		Logger:       logger,
	}
}

// initializeServices builds the per-kind generation services. A kind whose
// backend cannot be configured (for example, cloud disabled with no API key)
// is skipped so the remaining endpoints stay up; its endpoint will reject
// requests and the health check will report it unavailable.
func (s *Server) initializeServices() {
	for _, kind := range []types.RequestKind{types.KindRole, types.KindResume} {
		svc, err := ai.NewService(s.AppConfig, kind, s.Logger)
		if err != nil {
			s.Logger.LogError(err, "Generation backend unavailable",
				"kind", string(kind))
			continue
		}
		s.Services[kind] = svc
	}
}

// closeServices releases backend resources held by the generation services
func (s *Server) closeServices() {
	for kind, svc := range s.Services {
		if err := svc.Close(); err != nil {
			s.Logger.LogError(err, "Failed to close generation service",
				"kind", string(kind))
		}
	}
}
