package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every endpoint and wraps the router in the middleware
// chain (outermost first): recoverPanic → requestID → logRequests →
// rateLimit.
func NewRouter(h *Handler) http.Handler {
	router := mux.NewRouter()

	films := router.PathPrefix("/films").Subrouter()
	films.HandleFunc("", h.ListFilms).Methods(http.MethodGet)
	films.HandleFunc("", h.CreateFilm).Methods(http.MethodPost)
	films.HandleFunc("", h.UpdateFilm).Methods(http.MethodPut)
	// /popular must be registered before /{id} so "popular" is not read as an id.
	films.HandleFunc("/popular", h.PopularFilms).Methods(http.MethodGet)
	films.HandleFunc("/{id}", h.GetFilm).Methods(http.MethodGet)
	films.HandleFunc("/{id}", h.DeleteFilm).Methods(http.MethodDelete)
	films.HandleFunc("/{id}/like/{userId}", h.LikeFilm).Methods(http.MethodPut)
	films.HandleFunc("/{id}/like/{userId}", h.UnlikeFilm).Methods(http.MethodDelete)

	users := router.PathPrefix("/users").Subrouter()
	users.HandleFunc("", h.ListUsers).Methods(http.MethodGet)
	users.HandleFunc("", h.CreateUser).Methods(http.MethodPost)
	users.HandleFunc("", h.UpdateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id}", h.GetUser).Methods(http.MethodGet)
	users.HandleFunc("/{id}", h.DeleteUser).Methods(http.MethodDelete)
	users.HandleFunc("/{id}/friends", h.ListFriends).Methods(http.MethodGet)
	// The common-friends route precedes /{id}/friends/{friendId} so "common"
	// is never parsed as a friend id.
	users.HandleFunc("/{id}/friends/common/{otherId}", h.CommonFriends).Methods(http.MethodGet)
	users.HandleFunc("/{id}/friends/{friendId}", h.AddFriend).Methods(http.MethodPut)
	users.HandleFunc("/{id}/friends/{friendId}", h.DeleteFriend).Methods(http.MethodDelete)

	genres := router.PathPrefix("/genres").Subrouter()
	genres.HandleFunc("", h.ListGenres).Methods(http.MethodGet)
	genres.HandleFunc("/{id}", h.GetGenre).Methods(http.MethodGet)

	mpa := router.PathPrefix("/mpa").Subrouter()
	mpa.HandleFunc("", h.ListMPA).Methods(http.MethodGet)
	mpa.HandleFunc("/{id}", h.GetMPA).Methods(http.MethodGet)

	return h.recoverPanic(h.requestID(h.logRequests(h.rateLimit(router))))
}
