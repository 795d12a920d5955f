package handlers

import (
	"net/http"

	"github.com/aivahq/aiva-backend/internal/auth"
	"github.com/aivahq/aiva-backend/internal/repository"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input auth.RegisterInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.auth.Register(r.Context(), input)
	if err == auth.ErrUserExists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err == auth.ErrInvalidCredentials {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// New accounts get a welcome notification on their feed.
	if _, nerr := h.notifications.NotifyWelcome(r.Context(), resp.User.ID); nerr != nil {
		writeError(w, http.StatusInternalServerError, nerr.Error())
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input auth.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.auth.Login(r.Context(), input)
	switch err {
	case nil:
	case auth.ErrInvalidCredentials:
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	case auth.ErrInactiveUser:
		writeError(w, http.StatusForbidden, "account is inactive")
		return
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	h.companies.ClearData(uid)
	h.posts.ClearData(uid)
	h.auth.Logout()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := h.store.Accounts.GetByID(r.Context(), userID(r))
	if err == repository.ErrNotFound {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input struct {
		FirstName string  `json:"firstName"`
		LastName  string  `json:"lastName"`
		Avatar    *string `json:"avatar"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	uid := userID(r)
	if err := h.store.Accounts.UpdateProfile(r.Context(), uid, input.FirstName, input.LastName, input.Avatar); err != nil {
		if err == repository.ErrNotFound {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	account, err := h.store.Accounts.GetByID(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, account)
}
