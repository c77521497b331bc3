package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/maauso/sfxgen-api/internal/job"
)

const (
	// multipartOverhead is the body allowance on top of the video limit for
	// form fields and part headers.
	multipartOverhead int64 = 1 << 20
	// formMemory is the part of a multipart body kept in memory; the rest is
	// spooled to disk by mime/multipart.
	formMemory int64 = 8 << 20
)

// errorCodes maps failure kinds to response codes.
var errorCodes = map[job.Kind]string{
	job.KindValidation: "VALIDATION_ERROR",
	job.KindStorage:    "STORAGE_ERROR",
	job.KindRecord:     "RECORD_ERROR",
	job.KindGeneration: "GENERATION_FAILED",
	job.KindMixing:     "MIXING_FAILED",
	job.KindTimeout:    "TIMEOUT",
	job.KindInternal:   "INTERNAL_ERROR",
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	service         *job.Service
	logger          *slog.Logger
	defaultDuration int
	maxUploadBytes  int64
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithDefaultDuration sets the duration used when the form omits it.
func WithDefaultDuration(seconds int) HandlerOption {
	return func(h *Handlers) {
		if seconds > 0 {
			h.defaultDuration = seconds
		}
	}
}

// WithMaxUploadBytes sets the video size limit the request body is capped from.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handlers) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *job.Service, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		service:         service,
		logger:          logger,
		defaultDuration: job.DefaultDuration,
		maxUploadBytes:  job.DefaultMaxVideoBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GenerateSFX handles POST /generate_sfx requests. The job runs to completion
// within the request.
func (h *Handlers) GenerateSFX(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			// Same policy and code as the orchestrator's size check, but the
			// body is never read far enough to attribute it to a record.
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("validation failed: video exceeds %d bytes", h.maxUploadBytes), errorCodes[job.KindValidation])
			return
		}
		h.logger.Warn("failed to parse multipart form",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid multipart form", "INVALID_FORM")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	duration := h.defaultDuration
	if raw := strings.TrimSpace(r.FormValue("duration")); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "duration must be an integer", "INVALID_FORM")
			return
		}
		duration = d
	}

	input := job.Input{
		Prompt:   r.FormValue("prompt"),
		Duration: duration,
	}

	file, header, err := r.FormFile("video")
	switch {
	case err == nil:
		defer func(f multipart.File) { _ = f.Close() }(file)
		input.Video = &job.Upload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  file,
		}
	case errors.Is(err, http.ErrMissingFile):
	default:
		writeError(w, http.StatusBadRequest, "invalid video part", "INVALID_FORM")
		return
	}

	res, err := h.service.Generate(r.Context(), input)
	if err != nil {
		h.writeJobError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Status:     "done",
		AudioURL:   res.AudioURL,
		VideoURL:   res.VideoURL,
		DatabaseID: res.JobID,
	})
}

// GetJob handles GET /jobs/{id} requests.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	found, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get job",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get job", "RECORD_ERROR")
		return
	}

	resp := JobResponse{
		ID:             found.ID,
		Status:         string(found.Status),
		Prompt:         found.Prompt,
		Duration:       found.Duration,
		SourceVideoURL: found.SourceVideoURL,
		AudioURL:       found.AudioURL,
		VideoURL:       found.VideoURL,
		Error:          found.ErrorMessage,
		CreatedAt:      found.CreatedAt,
		UpdatedAt:      found.UpdatedAt,
	}
	if !found.CompletedAt.IsZero() {
		completed := found.CompletedAt
		resp.CompletedAt = &completed
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeJobError maps an orchestrator failure to its HTTP status and code.
func (h *Handlers) writeJobError(w http.ResponseWriter, err error) {
	kind := job.KindOf(err)
	status := http.StatusInternalServerError
	if kind == job.KindValidation {
		status = http.StatusBadRequest
	}

	var jerr *job.Error
	resp := ErrorResponse{Error: err.Error(), Code: errorCodes[kind]}
	if errors.As(err, &jerr) {
		resp.DatabaseID = jerr.JobID
	}
	if resp.Code == "" {
		resp.Code = errorCodes[job.KindInternal]
	}
	writeJSON(w, status, resp)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
