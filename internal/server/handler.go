package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"qaforge/internal/ai"
	qaforgeErrors "qaforge/internal/errors"
	"qaforge/internal/extract"
	"qaforge/internal/observability"
	"qaforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// createRoleQuestionsHandler serves GET /generate_questions?role=...
func (s *Server) createRoleQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("qaforge.api")
		ctx, span := tracer.Start(ctx, "api.generate_questions")
		defer span.End()

		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		role := strings.TrimSpace(r.URL.Query().Get("role"))
		if role == "" {
			err := fmt.Errorf("missing role parameter")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing role", "role query parameter is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.role", role),
			attribute.String("operation", "generate_questions"),
		)

		svc, ok := s.Services[types.KindRole]
		if !ok {
			err := fmt.Errorf("role generation backend not configured")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_unavailable"))
			writeErrorResponse(w, "Backend unavailable", "Role-based generation backend is not configured", http.StatusServiceUnavailable)
			return
		}

		req := types.GenerationRequest{
			Kind:    types.KindRole,
			Subject: role,
		}

		s.runGeneration(ctx, w, om, span, svc, req)
	}
}

// createResumeQuestionsHandler serves POST /generate_questions_from_resume
// with a multipart file upload
func (s *Server) createResumeQuestionsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("qaforge.api")
		ctx, span := tracer.Start(ctx, "api.generate_questions_from_resume")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		filename, data, err := s.readResumeUpload(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeAppErrorResponse(w, err)
			return
		}

		span.SetAttributes(
			attribute.String("request.filename", filename),
			attribute.Int("request.file_size", len(data)),
			attribute.String("operation", "generate_questions_from_resume"),
		)

		resumeText, err := extract.ExtractText(filename, data)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", string(qaforgeErrors.GetType(err))))
			writeAppErrorResponse(w, err)
			return
		}

		span.SetAttributes(attribute.Int("request.extracted_chars", len(resumeText)))

		svc, ok := s.Services[types.KindResume]
		if !ok {
			err := fmt.Errorf("resume generation backend not configured")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_unavailable"))
			writeErrorResponse(w, "Backend unavailable", "Resume-based generation backend is not configured", http.StatusServiceUnavailable)
			return
		}

		req := types.GenerationRequest{
			Kind:       types.KindResume,
			Subject:    filename,
			ResumeText: resumeText,
			Filename:   filename,
		}

		s.runGeneration(ctx, w, om, span, svc, req)
	}
}

// readResumeUpload parses the multipart form and returns the uploaded file.
// The upload must arrive in a form field named "file".
func (s *Server) readResumeUpload(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(s.MaxFileSize); err != nil {
		return "", nil, qaforgeErrors.NewValidationError(qaforgeErrors.ErrCodeInvalidRequest,
			fmt.Sprintf("Failed to parse multipart form (upload limit is %d bytes)", s.MaxFileSize), err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, qaforgeErrors.NewValidationError(qaforgeErrors.ErrCodeInvalidRequest,
			"Missing file upload, expected a multipart field named 'file'", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Warn("Failed to close uploaded file", "error", err)
		}
	}()

	if !extract.IsSupportedFilename(header.Filename) {
		return "", nil, qaforgeErrors.NewValidationError(qaforgeErrors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("Unsupported file format for %q, expected one of: %s",
				header.Filename, strings.Join(extract.SupportedExtensions, ", ")), nil)
	}

	data, err := io.ReadAll(io.LimitReader(file, s.MaxFileSize+1))
	if err != nil {
		return "", nil, qaforgeErrors.NewIOError(qaforgeErrors.ErrCodeFileNotReadable,
			"Failed to read uploaded file", err)
	}
	if int64(len(data)) > s.MaxFileSize {
		return "", nil, qaforgeErrors.NewValidationError(qaforgeErrors.ErrCodeInvalidRequest,
			fmt.Sprintf("Uploaded file exceeds the %d byte limit", s.MaxFileSize), nil)
	}

	return header.Filename, data, nil
}

// runGeneration executes the generation pipeline and writes the JSON result,
// recording metrics along the way. Shared by both generation endpoints.
func (s *Server) runGeneration(ctx context.Context, w http.ResponseWriter, om *observability.ObservabilityManager, span oteltrace.Span, svc *ai.Service, req types.GenerationRequest) {
	metrics := om.GetMetrics()

	var result types.QAResult
	var strategy string
	err := metrics.TrackGenerationWithTokens(ctx, string(req.Kind), svc.Backend.Name(), func(ctx context.Context) *observability.GenerationResult {
		output, tokenUsage, usedStrategy, genErr := svc.GenerateQA(ctx, req)
		result = output
		strategy = usedStrategy
		return &observability.GenerationResult{
			Error:      genErr,
			TokenUsage: (*observability.TokenUsage)(tokenUsage),
		}
	}, om)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", string(qaforgeErrors.GetType(err))))
		writeAppErrorResponse(w, err)
		return
	}

	metrics.RecordParseStrategy(ctx, strategy, string(result.Status), om)

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("response.status", string(result.Status)),
		attribute.String("response.parse_strategy", strategy),
		attribute.Int("response.total_questions", result.TotalQuestions),
	)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		span.RecordError(err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordRateLimitHit(r.Context(), r.URL.Path, r.Method, om)
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
