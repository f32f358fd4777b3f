package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"filmclub/internal/domain"
	"filmclub/internal/service"
)

// Handler bundles the services and helpers behind every HTTP endpoint.
type Handler struct {
	films  *service.FilmService
	users  *service.UserService
	genres *service.GenreService
	mpa    *service.MPAService
	logger *slog.Logger

	rateRPS   float64
	rateBurst int
}

func NewHandler(films *service.FilmService, users *service.UserService,
	genres *service.GenreService, mpa *service.MPAService,
	logger *slog.Logger, rateRPS float64, rateBurst int) *Handler {
	return &Handler{
		films:     films,
		users:     users,
		genres:    genres,
		mpa:       mpa,
		logger:    logger,
		rateRPS:   rateRPS,
		rateBurst: rateBurst,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to encode JSON response",
				slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondServiceError is the single place where the error taxonomy maps to
// status codes: NotFound → 404, Validation → 400, anything else → 500 with
// a generic message so internal detail never leaks to the caller.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *domain.NotFoundError
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &nf):
		h.logger.WarnContext(r.Context(), "entity not found", slog.String("error", nf.Msg))
		h.respondError(w, r, http.StatusNotFound, nf.Msg)
	case errors.As(err, &ve):
		h.logger.WarnContext(r.Context(), "request rejected", slog.String("error", ve.Msg))
		h.respondError(w, r, http.StatusBadRequest, ve.Msg)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		h.respondError(w, r, http.StatusInternalServerError, "an unexpected error occurred")
	}
}

// pathID extracts a positive integer path variable.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("path parameter %s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}
