package api

import (
	"context"
	"net/http"

	"github.com/C0de-cloud/Notes-API/api/rest"
	"github.com/C0de-cloud/Notes-API/mq"
	"github.com/C0de-cloud/Notes-API/service"
	"github.com/C0de-cloud/Notes-API/store"
	"github.com/C0de-cloud/Notes-API/worker"
)

type NotesAPI struct {
	restHandler *rest.Handler
	shutdownCtx context.Context
}

func NewNotesAPI(
	notesStore store.NotesStore,
	cleanupQueue mq.MessageQueue,
	jwtSecret []byte,
	shutdownCtx context.Context,
) *NotesAPI {
	cleanupConsumer := worker.NewCleanupConsumer(cleanupQueue, notesStore)
	go cleanupConsumer.Run(shutdownCtx)

	svc := service.NewService(notesStore, cleanupQueue, jwtSecret)
	restHandler := rest.NewHandler(svc)

	return &NotesAPI{
		restHandler: restHandler,
		shutdownCtx: shutdownCtx,
	}
}

func (notesAPI *NotesAPI) RegisterRoutes(mux *http.ServeMux) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	h := notesAPI.restHandler

	mux.HandleFunc("POST /api/v1/auth/register", h.HandleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", h.HandleLogin)
	mux.HandleFunc("GET /api/v1/auth/me", h.HandleGetMe)
	mux.HandleFunc("PUT /api/v1/auth/me", h.HandleUpdateMe)
	mux.HandleFunc("DELETE /api/v1/auth/me", h.HandleDeleteMe)

	mux.HandleFunc("GET /api/v1/notes", h.HandleListNotes)
	mux.HandleFunc("POST /api/v1/notes", h.HandleCreateNote)
	mux.HandleFunc("GET /api/v1/notes/shared-with-me", h.HandleSharedWithMe)
	mux.HandleFunc("GET /api/v1/notes/{noteId}", h.HandleGetNote)
	mux.HandleFunc("PUT /api/v1/notes/{noteId}", h.HandleUpdateNote)
	mux.HandleFunc("DELETE /api/v1/notes/{noteId}", h.HandleDeleteNote)
	mux.HandleFunc("GET /api/v1/notes/{noteId}/export/{format}", h.HandleExportNote)

	mux.HandleFunc("POST /api/v1/notes/{noteId}/share", h.HandleShareNote)
	mux.HandleFunc("GET /api/v1/notes/{noteId}/share", h.HandleListShares)
	mux.HandleFunc("PUT /api/v1/notes/{noteId}/share/{userId}", h.HandleUpdateShare)
	mux.HandleFunc("DELETE /api/v1/notes/{noteId}/share/{userId}", h.HandleRevokeShare)

	mux.HandleFunc("GET /api/v1/tags", h.HandleListTags)
	mux.HandleFunc("GET /api/v1/tags/{name}/notes", h.HandleNotesByTag)

	mux.HandleFunc("GET /api/v1/collections", h.HandleListCollections)
	mux.HandleFunc("POST /api/v1/collections", h.HandleCreateCollection)
	mux.HandleFunc("GET /api/v1/collections/{collectionId}", h.HandleGetCollection)
	mux.HandleFunc("PUT /api/v1/collections/{collectionId}", h.HandleUpdateCollection)
	mux.HandleFunc("DELETE /api/v1/collections/{collectionId}", h.HandleDeleteCollection)
	mux.HandleFunc("POST /api/v1/collections/{collectionId}/notes", h.HandleAddNotesToCollection)
	mux.HandleFunc("DELETE /api/v1/collections/{collectionId}/notes/{noteId}", h.HandleRemoveNoteFromCollection)
	mux.HandleFunc("GET /api/v1/collections/{collectionId}/export/{format}", h.HandleExportCollection)
}
