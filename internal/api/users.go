package api

import (
	"encoding/json"
	"net/http"

	"filmclub/internal/domain"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindAll(r.Context())
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	created, err := h.users.Create(r.Context(), &user)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, created)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		h.respondError(w, r, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	updated, err := h.users.Update(r.Context(), &user)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, updated)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	user, err := h.users.Delete(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, ok := h.friendPathIDs(w, r)
	if !ok {
		return
	}
	friend, err := h.users.AddFriend(r.Context(), userID, friendID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, friend)
}

func (h *Handler) DeleteFriend(w http.ResponseWriter, r *http.Request) {
	userID, friendID, ok := h.friendPathIDs(w, r)
	if !ok {
		return
	}
	friend, err := h.users.DeleteFriend(r.Context(), userID, friendID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, friend)
}

func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	friends, err := h.users.Friends(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, friends)
}

func (h *Handler) CommonFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	otherID, err := pathID(r, "otherId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	common, err := h.users.CommonFriends(r.Context(), userID, otherID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, common)
}

func (h *Handler) friendPathIDs(w http.ResponseWriter, r *http.Request) (userID, friendID int64, ok bool) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	friendID, err = pathID(r, "friendId")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return userID, friendID, true
}
