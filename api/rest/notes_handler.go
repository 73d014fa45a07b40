package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/C0de-cloud/Notes-API/service"
)

type noteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Color   string   `json:"color"`
	Tags    []string `json:"tags"`
	Pinned  bool     `json:"pinned"`
}

func (h *Handler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	note, err := h.Service.CreateNote(r.Context(), user, service.NoteParams{
		Title:   req.Title,
		Content: req.Content,
		Color:   req.Color,
		Tags:    req.Tags,
		Pinned:  req.Pinned,
	})
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponseStatus(w, toNoteResponse(note), http.StatusCreated)
}

type listNotesResponse struct {
	Notes  []noteResponse `json:"notes"`
	Offset int            `json:"offset"`
	Limit  int            `json:"limit"`
}

func (h *Handler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	offset, limit := pagination(r)
	params := service.SearchParams{
		Query:      r.URL.Query().Get("q"),
		Tags:       parseTagsParam(r),
		PinnedOnly: r.URL.Query().Get("pinned_only") == "true",
		Offset:     offset,
		Limit:      limit,
	}

	notes, err := h.Service.ListNotes(r.Context(), user, params)
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, listNotesResponse{Notes: toNoteResponses(notes), Offset: offset, Limit: limit})
}

func parseTagsParam(r *http.Request) []string {
	raw := r.URL.Query().Get("tags")
	if raw == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (h *Handler) HandleSharedWithMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	offset, limit := pagination(r)
	notes, err := h.Service.SharedWithMe(r.Context(), user, offset, limit)
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, listNotesResponse{Notes: toNoteResponses(notes), Offset: offset, Limit: limit})
}

type getNoteResponse struct {
	noteResponse
	Permission string `json:"permission"`
}

func (h *Handler) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	note, access, err := h.Service.GetNote(r.Context(), user, r.PathValue("noteId"))
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, getNoteResponse{
		noteResponse: toNoteResponse(note),
		Permission:   access.String(),
	})
}

type updateNoteRequest struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Color   *string  `json:"color"`
	Tags    []string `json:"tags"`
	Pinned  *bool    `json:"pinned"`
}

func (h *Handler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	note, err := h.Service.UpdateNote(r.Context(), user, r.PathValue("noteId"), service.NoteUpdateParams{
		Title:   req.Title,
		Content: req.Content,
		Color:   req.Color,
		Tags:    req.Tags,
		Pinned:  req.Pinned,
	})
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, toNoteResponse(note))
}

func (h *Handler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteNote(r.Context(), user, r.PathValue("noteId")); err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, successResponse{Success: true})
}

var exportExtensions = map[string]string{
	service.FormatMarkdown: "md",
	service.FormatHTML:     "html",
	service.FormatPDF:      "pdf",
}

func (h *Handler) HandleExportNote(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	noteId := r.PathValue("noteId")
	format := r.PathValue("format")

	data, contentType, err := h.Service.ExportNote(r.Context(), user, noteId, format)
	if err != nil {
		h.sendError(w, err)
		return
	}

	sendExport(w, data, contentType, fmt.Sprintf("note-%s.%s", noteId, exportExtensions[format]))
}

func sendExport(w http.ResponseWriter, data []byte, contentType string, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}
