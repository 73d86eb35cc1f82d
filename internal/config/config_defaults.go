package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.questionCount", 5)
	v.SetDefault("ai.maxResumeChars", 6000)

	// AI Configuration - Local backend defaults (role requests)
	v.SetDefault("ai.local.endpoint", "http://localhost:11434")
	v.SetDefault("ai.local.model", "llama3")
	v.SetDefault("ai.local.timeout", 120*time.Second) // local models answer slowly on CPU hosts
	v.SetDefault("ai.local.maxRetries", 2)
	v.SetDefault("ai.local.temperature", 0.7)

	// AI Configuration - Cloud backend defaults (resume requests)
	v.SetDefault("ai.cloud.model", "gemini-2.0-flash")
	v.SetDefault("ai.cloud.apiKey", "")
	v.SetDefault("ai.cloud.disabled", false)
	v.SetDefault("ai.cloud.timeout", 60*time.Second)
	v.SetDefault("ai.cloud.maxRetries", 3)
	v.SetDefault("ai.cloud.temperature", 0.7)

	// Circuit Breaker Configuration defaults for both backends
	v.SetDefault("ai.local.circuitBreaker.enabled", true)
	v.SetDefault("ai.local.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.local.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.local.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.local.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.local.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("ai.cloud.circuitBreaker.enabled", true)
	v.SetDefault("ai.cloud.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.cloud.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.cloud.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.cloud.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.cloud.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 5*1024*1024) // 5MB resume upload cap
	v.SetDefault("app.promptReload", false)

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "qaforge")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.generation.enabled", true)
	v.SetDefault("observability.customMetrics.generation.trackDuration", true)
	v.SetDefault("observability.customMetrics.generation.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.generation.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.parsing.enabled", true)
	v.SetDefault("observability.customMetrics.parsing.trackStrategies", true)
	v.SetDefault("observability.customMetrics.parsing.trackStatuses", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.backendCheckTimeout", 10*time.Second)
}
