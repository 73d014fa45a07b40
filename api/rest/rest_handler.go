package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/C0de-cloud/Notes-API/models"
	"github.com/C0de-cloud/Notes-API/service"
)

type Handler struct {
	Service     *service.Service
	authLimiter *ipRateLimiter
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Service:     svc,
		authLimiter: newIPRateLimiter(authAttemptsPerSecond, authBurstLimit),
	}
}

type userResponse struct {
	Id       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Created  int64  `json:"created"`
	Updated  int64  `json:"updated"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		Id:       user.Id,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		Created:  user.Created,
		Updated:  user.Updated,
	}
}

type noteResponse struct {
	Id      string   `json:"id"`
	OwnerId string   `json:"ownerId"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Color   string   `json:"color,omitempty"`
	Tags    []string `json:"tags"`
	Pinned  bool     `json:"pinned"`
	Created int64    `json:"created"`
	Updated int64    `json:"updated"`
}

func toNoteResponse(note models.Note) noteResponse {
	return noteResponse{
		Id:      note.Id,
		OwnerId: note.OwnerId,
		Title:   note.Title,
		Content: note.Content,
		Color:   note.Color,
		Tags:    note.Tags,
		Pinned:  note.Pinned,
		Created: note.Created,
		Updated: note.Updated,
	}
}

func toNoteResponses(notes []models.Note) []noteResponse {
	resp := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		resp = append(resp, toNoteResponse(note))
	}
	return resp
}

type grantResponse struct {
	NoteId     string `json:"noteId"`
	UserId     string `json:"userId"`
	Permission string `json:"permission"`
	Created    int64  `json:"created"`
	Updated    int64  `json:"updated"`
}

func toGrantResponse(grant models.ShareGrant) grantResponse {
	return grantResponse{
		NoteId:     grant.NoteId,
		UserId:     grant.GranteeId,
		Permission: string(grant.Permission),
		Created:    grant.Created,
		Updated:    grant.Updated,
	}
}

type collectionResponse struct {
	Id          string `json:"id"`
	OwnerId     string `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Created     int64  `json:"created"`
	Updated     int64  `json:"updated"`
}

func toCollectionResponse(collection models.Collection) collectionResponse {
	return collectionResponse{
		Id:          collection.Id,
		OwnerId:     collection.OwnerId,
		Name:        collection.Name,
		Description: collection.Description,
		Color:       collection.Color,
		Created:     collection.Created,
		Updated:     collection.Updated,
	}
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	h.sendResponseStatus(w, resp, http.StatusOK)
}

func (h *Handler) sendResponseStatus(w http.ResponseWriter, resp any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// sendError maps the service's failure kinds onto HTTP statuses. Anything
// the service did not classify is a 500 and gets logged with its cause,
// while the client only sees a generic message.
func (h *Handler) sendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("Internal error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) getTokenFromAuthHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimPrefix(authHeader, prefix)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	token := h.getTokenFromAuthHeader(r)
	user, err := h.Service.AuthenticateToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return models.User{}, false
	}
	return user, true
}

// pagination reads the offset/limit query parameters, ignoring anything
// that does not parse as a non-negative integer.
func pagination(r *http.Request) (int, int) {
	var offset, limit int
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return offset, limit
}
