package api

import "net/http"

func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.genres.FindAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genres)
}

func (h *Handler) GetGenre(w http.ResponseWriter, r *http.Request) {
	genreID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	genre, err := h.genres.FindByID(r.Context(), genreID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, genre)
}

func (h *Handler) ListMPA(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.mpa.FindAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, ratings)
}

func (h *Handler) GetMPA(w http.ResponseWriter, r *http.Request) {
	mpaID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rating, err := h.mpa.FindByID(r.Context(), mpaID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, rating)
}
