package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/C0de-cloud/Notes-API/models"
	mqmocks "github.com/C0de-cloud/Notes-API/mq/mocks"
	"github.com/C0de-cloud/Notes-API/service"
	"github.com/C0de-cloud/Notes-API/store"
	storemocks "github.com/C0de-cloud/Notes-API/store/mocks"
)

func setupHandler(t *testing.T) (*Handler, *storemocks.MockStore) {
	mockStore := new(storemocks.MockStore)
	mockMQ := new(mqmocks.MockMQ)
	svc := service.NewService(mockStore, mockMQ, []byte("secret"))
	return NewHandler(svc), mockStore
}

func authedRequest(t *testing.T, h *Handler, method string, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)

	token, err := h.Service.CreateJWT("user1")
	assert.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestHandleGetNote_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		storeErr   error
		wantStatus int
	}{
		{"Missing Note Is 404", store.ErrItemNotFound, http.StatusNotFound},
		{"Store Failure Is 500", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, mockStore := setupHandler(t)
			mockStore.On("GetUser", mock.Anything, "user1").Return(models.User{Id: "user1"}, nil)
			mockStore.On("GetNote", mock.Anything, "n1").Return(models.Note{}, tc.storeErr)

			req := authedRequest(t, h, http.MethodGet, "/api/v1/notes/n1", nil)
			req.SetPathValue("noteId", "n1")
			rec := httptest.NewRecorder()

			h.HandleGetNote(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestHandleGetNote_NoToken(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes/n1", nil)
	rec := httptest.NewRecorder()

	h.HandleGetNote(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleCreateNote_Success(t *testing.T) {
	h, mockStore := setupHandler(t)

	mockStore.On("GetUser", mock.Anything, "user1").Return(models.User{Id: "user1"}, nil)
	mockStore.On("CreateNote", mock.Anything, mock.Anything).Return(
		models.Note{Id: "n1", OwnerId: "user1", Title: "Groceries", Tags: []string{}}, nil)

	req := authedRequest(t, h, http.MethodPost, "/api/v1/notes", map[string]any{
		"title":   "Groceries",
		"content": "- milk",
	})
	rec := httptest.NewRecorder()

	h.HandleCreateNote(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp noteResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "n1", resp.Id)
	assert.Equal(t, "Groceries", resp.Title)
}

func TestHandleCreateNote_ValidationError(t *testing.T) {
	h, mockStore := setupHandler(t)

	mockStore.On("GetUser", mock.Anything, "user1").Return(models.User{Id: "user1"}, nil)

	req := authedRequest(t, h, http.MethodPost, "/api/v1/notes", map[string]any{
		"title":   "",
		"content": "body",
	})
	rec := httptest.NewRecorder()

	h.HandleCreateNote(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCreateNote_MalformedBody(t *testing.T) {
	h, mockStore := setupHandler(t)

	mockStore.On("GetUser", mock.Anything, "user1").Return(models.User{Id: "user1"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notes", bytes.NewBufferString("{not json"))
	token, _ := h.Service.CreateJWT("user1")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	h.HandleCreateNote(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRegister_Conflict(t *testing.T) {
	h, mockStore := setupHandler(t)

	mockStore.On("CreateUser", mock.Anything, mock.Anything).Return(models.User{}, store.ErrConditionFailed)

	body, _ := json.Marshal(map[string]string{
		"email":    "ada@example.com",
		"username": "ada",
		"password": "hunter2secret",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleRegister(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleLogin_RateLimited(t *testing.T) {
	h, mockStore := setupHandler(t)

	mockStore.On("GetUserByEmail", mock.Anything, mock.Anything).Return(models.User{}, store.ErrItemNotFound)
	mockStore.On("GetUserByUsername", mock.Anything, mock.Anything).Return(models.User{}, store.ErrItemNotFound)

	body, _ := json.Marshal(map[string]string{"login": "ada", "password": "wrong-password"})

	// Burn through the burst from a single IP; the bucket must run dry
	var last int
	for i := 0; i < authBurstLimit+1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
		req.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	// A different IP still gets through
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.RemoteAddr = "203.0.113.8:1234"
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleListNotes_ParsesQueryParams(t *testing.T) {
	h, mockStore := setupHandler(t)

	mockStore.On("GetUser", mock.Anything, "user1").Return(models.User{Id: "user1"}, nil)
	mockStore.On("GetOwnedNotes", mock.Anything, "user1").Return([]models.Note{
		{Id: "n1", OwnerId: "user1", Title: "Go", Tags: []string{"go", "dev"}, Updated: 100},
	}, nil)
	mockStore.On("GetGrantsForGrantee", mock.Anything, "user1").Return([]models.ShareGrant{}, nil)
	mockStore.On("GetNotesByIds", mock.Anything, []string{}).Return([]models.Note{}, nil)

	req := authedRequest(t, h, http.MethodGet, "/api/v1/notes?q=go&tags=go,dev&offset=0&limit=10", nil)
	rec := httptest.NewRecorder()

	h.HandleListNotes(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp listNotesResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Notes, 1)
	assert.Equal(t, 10, resp.Limit)
}

func TestHandleExportNote_SetsDownloadHeaders(t *testing.T) {
	h, mockStore := setupHandler(t)

	mockStore.On("GetUser", mock.Anything, "user1").Return(models.User{Id: "user1"}, nil)
	mockStore.On("GetNote", mock.Anything, "n1").Return(
		models.Note{Id: "n1", OwnerId: "user1", Title: "Doc", Content: "body"}, nil)

	req := authedRequest(t, h, http.MethodGet, "/api/v1/notes/n1/export/markdown", nil)
	req.SetPathValue("noteId", "n1")
	req.SetPathValue("format", "markdown")
	rec := httptest.NewRecorder()

	h.HandleExportNote(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="note-n1.md"`)
	assert.Equal(t, "body", rec.Body.String())
}

func TestGetTokenFromAuthHeader(t *testing.T) {
	h, _ := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", h.getTokenFromAuthHeader(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", h.getTokenFromAuthHeader(req))

	req.Header.Set("Authorization", "Bearer tok123")
	assert.Equal(t, "tok123", h.getTokenFromAuthHeader(req))
}
