package rest

import (
	"encoding/json"
	"net/http"

	"github.com/C0de-cloud/Notes-API/service"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.checkAuthRate(w, r) {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.Service.Register(r.Context(), service.RegisterParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponseStatus(w, authResponse{User: toUserResponse(user), Token: token}, http.StatusCreated)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.checkAuthRate(w, r) {
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.Service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, authResponse{User: toUserResponse(user), Token: token})
}

func (h *Handler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}
	h.sendResponse(w, toUserResponse(user))
}

type updateMeRequest struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	FullName *string `json:"fullName"`
}

func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req updateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.Service.UpdateProfile(r.Context(), user, service.ProfileUpdateParams{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, toUserResponse(updated))
}

func (h *Handler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteAccount(r.Context(), user); err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, successResponse{Success: true})
}
