package config

import "os"

// applyBackendDefaults applies global defaults to backend-specific configuration
func (c *Config) applyBackendDefaults(backendCfg *BackendAIConfig) {
	if backendCfg.Timeout == nil {
		backendCfg.Timeout = &c.AI.Timeout
	}
	if backendCfg.MaxRetries == nil {
		backendCfg.MaxRetries = &c.AI.MaxRetries
	}
	if backendCfg.Temperature == nil {
		backendCfg.Temperature = &c.AI.Temperature
	}
}

// GetLocalConfig returns the effective local backend configuration with
// fallback to the global AI config
func (c *Config) GetLocalConfig() BackendAIConfig {
	config := c.AI.Local
	c.applyBackendDefaults(&config)
	return config
}

// GetCloudConfig returns the effective cloud backend configuration with
// fallback to the global AI config. The API key falls back to the legacy
// GEMINI_API_KEY environment variable when unset.
func (c *Config) GetCloudConfig() BackendAIConfig {
	config := c.AI.Cloud
	c.applyBackendDefaults(&config)

	if config.APIKey == "" {
		config.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	return config
}
