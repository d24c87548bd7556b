package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shortlink/internal/domain"
	"shortlink/pkg/logger"
)

// maxBodyBytes caps the size of a shorten request body
const maxBodyBytes = 1 << 20

// ShortenerService interface defines the service methods needed by the handler
// Using an interface instead of concrete type allows for easy mocking in tests
type ShortenerService interface {
	Shorten(ctx context.Context, originalURL string) (*domain.Mapping, error)
	Resolve(ctx context.Context, shortCode string) (string, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service        ShortenerService
	logger         *logger.Logger
	redirectStatus int // 301 or 302
}

// NewHandler creates a new HTTP handler
// permanentRedirect selects 301 Moved Permanently over 302 Found.
func NewHandler(service ShortenerService, log *logger.Logger, permanentRedirect bool) *Handler {
	status := http.StatusFound
	if permanentRedirect {
		status = http.StatusMovedPermanently
	}

	return &Handler{
		service:        service,
		logger:         log,
		redirectStatus: status,
	}
}

// RegisterRoutes wires the handler into mux
// GET /{alias} only matches single-segment paths, so the literal routes
// below always take precedence.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /shorten", h.Shorten)
	mux.HandleFunc("GET /health/live", h.HealthCheck)
	mux.HandleFunc("GET /{alias}", h.Redirect)
}

// Request/Response DTOs

type ShortenRequest struct {
	URL string `json:"url"`
}

type ShortenResponse struct {
	ShortURL string `json:"short_url"`
}

// Shorten handles POST /shorten
func (h *Handler) Shorten(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mapping, err := h.service.Shorten(r.Context(), req.URL)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to shorten URL")
		return
	}

	respondJSON(w, http.StatusCreated, ShortenResponse{ShortURL: mapping.ShortURL})
}

// Redirect handles GET /{alias}
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	alias := r.PathValue("alias")

	originalURL, err := h.service.Resolve(r.Context(), alias)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to resolve short code")
		return
	}

	h.requestLogger(r).Debug("Redirecting", "short_code", alias, "original_url", originalURL)
	http.Redirect(w, r, originalURL, h.redirectStatus)
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// respondServiceError maps the service error taxonomy onto status codes.
// Only unexpected failures are logged at error level.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log := h.requestLogger(r)

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		log.Info(msg, "reason", "invalid input", "error", err)
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAliasCollision):
		log.Warn(msg, "reason", "collision", "error", err)
		respondError(w, http.StatusConflict, "Short code collision, please retry")
	case errors.Is(err, domain.ErrNotFound):
		log.Info(msg, "reason", "not found", "error", err)
		respondError(w, http.StatusNotFound, "URL not found")
	default:
		log.Error(msg, "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handler) requestLogger(r *http.Request) *logger.Logger {
	return h.logger.WithContext(r.Context())
}
