package rest

import (
	"encoding/json"
	"net/http"

	"github.com/C0de-cloud/Notes-API/models"
)

type shareNoteRequest struct {
	UserId     string `json:"userId"`
	Permission string `json:"permission"`
}

func (h *Handler) HandleShareNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req shareNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	grant, err := h.Service.ShareNote(r.Context(), user, r.PathValue("noteId"), req.UserId, models.Permission(req.Permission))
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponseStatus(w, toGrantResponse(grant), http.StatusCreated)
}

type listSharesResponse struct {
	Shares []grantResponse `json:"shares"`
}

func (h *Handler) HandleListShares(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	grants, err := h.Service.ListShares(r.Context(), user, r.PathValue("noteId"))
	if err != nil {
		h.sendError(w, err)
		return
	}

	resp := listSharesResponse{Shares: make([]grantResponse, 0, len(grants))}
	for _, grant := range grants {
		resp.Shares = append(resp.Shares, toGrantResponse(grant))
	}
	h.sendResponse(w, resp)
}

type updateShareRequest struct {
	Permission string `json:"permission"`
}

func (h *Handler) HandleUpdateShare(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req updateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	grant, err := h.Service.UpdateShare(r.Context(), user, r.PathValue("noteId"), r.PathValue("userId"), models.Permission(req.Permission))
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, toGrantResponse(grant))
}

func (h *Handler) HandleRevokeShare(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.Service.RevokeShare(r.Context(), user, r.PathValue("noteId"), r.PathValue("userId")); err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, successResponse{Success: true})
}
