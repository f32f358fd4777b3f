package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"filmclub/internal/domain"
)

const defaultPopularCount = 10

func (h *Handler) ListFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.FindAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

func (h *Handler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	var film domain.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	created, err := h.films.Create(r.Context(), &film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, created)
}

func (h *Handler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	var film domain.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	updated, err := h.films.Update(r.Context(), &film)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, updated)
}

func (h *Handler) GetFilm(w http.ResponseWriter, r *http.Request) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	film, err := h.films.FindByID(r.Context(), filmID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

func (h *Handler) DeleteFilm(w http.ResponseWriter, r *http.Request) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	film, err := h.films.Delete(r.Context(), filmID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

func (h *Handler) LikeFilm(w http.ResponseWriter, r *http.Request) {
	filmID, userID, ok := h.likePathIDs(w, r)
	if !ok {
		return
	}
	film, err := h.films.Like(r.Context(), filmID, userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

func (h *Handler) UnlikeFilm(w http.ResponseWriter, r *http.Request) {
	filmID, userID, ok := h.likePathIDs(w, r)
	if !ok {
		return
	}
	film, err := h.films.Unlike(r.Context(), filmID, userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

func (h *Handler) PopularFilms(w http.ResponseWriter, r *http.Request) {
	count := defaultPopularCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(w, r, http.StatusBadRequest, "count query parameter must be an integer, got "+raw)
			return
		}
		count = parsed
	}
	films, err := h.films.TopFilms(r.Context(), count)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

func (h *Handler) likePathIDs(w http.ResponseWriter, r *http.Request) (filmID, userID int64, ok bool) {
	filmID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	userID, err = pathID(r, "userId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return filmID, userID, true
}
