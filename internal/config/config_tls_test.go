package config

import (
	"strings"
	"testing"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
		errorMsg    string
	}{
		{
			name:        "disabled mode",
			tls:         TLSConfig{Mode: "disabled"},
			expectError: false,
		},
		{
			name: "server mode valid",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
			expectError: false,
		},
		{
			name: "server mode with explicit min version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				MinVersion: "1.3",
			},
			expectError: false,
		},
		{
			name: "server mode missing key",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/path/to/cert.pem",
			},
			expectError: true,
			errorMsg:    "TLS certificate and key files are required",
		},
		{
			name: "server mode missing certificate",
			tls: TLSConfig{
				Mode:    "server",
				KeyFile: "/path/to/key.pem",
			},
			expectError: true,
			errorMsg:    "TLS certificate and key files are required",
		},
		{
			name:        "invalid mode",
			tls:         TLSConfig{Mode: "mutual"},
			expectError: true,
			errorMsg:    "invalid TLS mode: mutual",
		},
		{
			name: "unsupported min version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				MinVersion: "1.0",
			},
			expectError: true,
			errorMsg:    "invalid TLS minVersion: 1.0",
		},
		{
			name:        "garbage min version",
			tls:         TLSConfig{Mode: "disabled", MinVersion: "invalid"},
			expectError: true,
			errorMsg:    "invalid TLS minVersion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()

			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}
