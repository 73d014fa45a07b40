package rest

import (
	"net/http"
)

type tagResponse struct {
	Name      string `json:"name"`
	NoteCount int    `json:"noteCount"`
}

type listTagsResponse struct {
	Tags []tagResponse `json:"tags"`
}

func (h *Handler) HandleListTags(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	tags, err := h.Service.ListTags(r.Context(), user)
	if err != nil {
		h.sendError(w, err)
		return
	}

	resp := listTagsResponse{Tags: make([]tagResponse, 0, len(tags))}
	for _, tag := range tags {
		resp.Tags = append(resp.Tags, tagResponse{Name: tag.Name, NoteCount: tag.NoteCount})
	}
	h.sendResponse(w, resp)
}

func (h *Handler) HandleNotesByTag(w http.ResponseWriter, r *http.Request) {
	user, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	offset, limit := pagination(r)
	notes, err := h.Service.NotesByTag(r.Context(), user, r.PathValue("name"), offset, limit)
	if err != nil {
		h.sendError(w, err)
		return
	}

	h.sendResponse(w, listNotesResponse{Notes: toNoteResponses(notes), Offset: offset, Limit: limit})
}
