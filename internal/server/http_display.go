package server

import (
	"fmt"

	"qaforge/internal/utils"
)

// displayServerInfo prints the startup banner describing the active
// configuration.
func (s *Server) displayServerInfo() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health                          - Health check")
	fmt.Println("  GET  /stats                           - Server statistics")
	fmt.Println("  GET  /generate_questions?role=<role>  - Generate questions for a job role (requires API key)")
	fmt.Println("  POST /generate_questions_from_resume  - Generate questions from a resume upload (requires API key)")

	s.displayAuthInfo()
	s.displayUploadLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) == 0 {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: API endpoints are publicly accessible!")
		return
	}
	fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	fmt.Println("Include 'X-API-Key: <your-key>' header in requests to the generation endpoints")
}

func (s *Server) displayUploadLimitInfo() {
	if s.MaxFileSize <= 0 {
		fmt.Println("Resume upload limit: DISABLED")
		fmt.Println("WARNING: No upload size limits configured!")
		return
	}
	fmt.Printf("Resume upload limit: %s\n", utils.FormatFileSize(s.MaxFileSize))
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
		return
	}
	fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	if s.RateLimit.ByAPIKey {
		fmt.Println("  - Per API key rate limiting enabled")
	}
	if s.RateLimit.ByIP {
		fmt.Println("  - Per IP address rate limiting enabled")
	}
}
