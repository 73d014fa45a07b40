package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/C0de-cloud/Notes-API/service"
)

type collectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (h *Handler) HandleCreateCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req collectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	collection, err := h.Service.CreateCollection(r.Context(), user, service.CollectionParams{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponseStatus(w, toCollectionResponse(collection), http.StatusCreated)
}

type listCollectionsResponse struct {
	Collections []collectionResponse `json:"collections"`
}

func (h *Handler) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	collections, err := h.Service.ListCollections(r.Context(), user)
	if err != nil {
		h.sendError(w, err)
		return
	}

	resp := listCollectionsResponse{Collections: make([]collectionResponse, 0, len(collections))}
	for _, collection := range collections {
		resp.Collections = append(resp.Collections, toCollectionResponse(collection))
	}
	h.sendResponse(w, resp)
}

type getCollectionResponse struct {
	collectionResponse
	Notes []noteResponse `json:"notes"`
}

func (h *Handler) HandleGetCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	collection, notes, err := h.Service.GetCollection(r.Context(), user, r.PathValue("collectionId"))
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, getCollectionResponse{
		collectionResponse: toCollectionResponse(collection),
		Notes:              toNoteResponses(notes),
	})
}

type updateCollectionRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

func (h *Handler) HandleUpdateCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req updateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	collection, err := h.Service.UpdateCollection(r.Context(), user, r.PathValue("collectionId"), service.CollectionUpdateParams{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, toCollectionResponse(collection))
}

func (h *Handler) HandleDeleteCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteCollection(r.Context(), user, r.PathValue("collectionId")); err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, successResponse{Success: true})
}

type addNotesRequest struct {
	NoteIds []string `json:"noteIds"`
}

func (h *Handler) HandleAddNotesToCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req addNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.AddNotesToCollection(r.Context(), user, r.PathValue("collectionId"), req.NoteIds); err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, successResponse{Success: true})
}

func (h *Handler) HandleRemoveNoteFromCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.Service.RemoveNoteFromCollection(r.Context(), user, r.PathValue("collectionId"), r.PathValue("noteId")); err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, successResponse{Success: true})
}

func (h *Handler) HandleExportCollection(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	collectionId := r.PathValue("collectionId")
	format := r.PathValue("format")

	data, contentType, err := h.Service.ExportCollection(r.Context(), user, collectionId, format)
	if err != nil {
		h.sendError(w, err)
		return
	}

	sendExport(w, data, contentType, fmt.Sprintf("collection-%s.%s", collectionId, exportExtensions[format]))
}
