package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/C0de-cloud/Notes-API/models"
	mqmocks "github.com/C0de-cloud/Notes-API/mq/mocks"
	"github.com/C0de-cloud/Notes-API/service"
	"github.com/C0de-cloud/Notes-API/store"
	storemocks "github.com/C0de-cloud/Notes-API/store/mocks"
)

func setupService(t *testing.T) (*service.Service, *storemocks.MockStore, *mqmocks.MockMQ) {
	mockStore := new(storemocks.MockStore)
	mockMQ := new(mqmocks.MockMQ)

	svc := service.NewService(mockStore, mockMQ, []byte("secret"))

	return svc, mockStore, mockMQ
}

// Helper that creates a channel and wraps a mock call to signal when it's called
func wrapMockWithSignal(call *mock.Call) chan struct{} {
	done := make(chan struct{})
	call.Run(func(args mock.Arguments) {
		close(done)
	})
	return done
}

func TestCreateNote_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	user := models.User{Id: "user1"}
	params := service.NoteParams{
		Title:   "Groceries",
		Content: "- milk\n- eggs",
		Color:   "#ffcc00",
		Tags:    []string{"home"},
		Pinned:  true,
	}

	mockStore.On("CreateNote", ctx, mock.MatchedBy(func(note models.Note) bool {
		return note.OwnerId == "user1" && note.Title == "Groceries" && note.Pinned
	})).Return(models.Note{Id: "note1", OwnerId: "user1", Title: "Groceries", Pinned: true}, nil)

	note, err := svc.CreateNote(ctx, user, params)
	assert.NoError(t, err)
	assert.Equal(t, "note1", note.Id)
}

func TestCreateNote_NilTagsBecomeEmpty(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("CreateNote", ctx, mock.MatchedBy(func(note models.Note) bool {
		return note.Tags != nil && len(note.Tags) == 0
	})).Return(models.Note{Id: "note1"}, nil)

	_, err := svc.CreateNote(ctx, models.User{Id: "user1"}, service.NoteParams{
		Title:   "Untagged",
		Content: "body",
	})
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestCreateNote_InvalidColor(t *testing.T) {
	svc, mockStore, _ := setupService(t)

	_, err := svc.CreateNote(context.Background(), models.User{Id: "user1"}, service.NoteParams{
		Title:   "Bad color",
		Content: "body",
		Color:   "red",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
	mockStore.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything)
}

func TestGetNote_Owner(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	note := models.Note{Id: "note1", OwnerId: "user1", Title: "Mine"}
	mockStore.On("GetNote", ctx, "note1").Return(note, nil)

	got, access, err := svc.GetNote(ctx, models.User{Id: "user1"}, "note1")
	assert.NoError(t, err)
	assert.Equal(t, note.Title, got.Title)
	assert.Equal(t, service.AccessOwner, access)

	// The owner's rights never depend on grant rows
	mockStore.AssertNotCalled(t, "GetGrant", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetNote_ReadGrantee(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	note := models.Note{Id: "note1", OwnerId: "owner1"}
	mockStore.On("GetNote", ctx, "note1").Return(note, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(
		models.ShareGrant{NoteId: "note1", GranteeId: "user2", Permission: models.PermissionRead}, nil)

	_, access, err := svc.GetNote(ctx, models.User{Id: "user2"}, "note1")
	assert.NoError(t, err)
	assert.Equal(t, service.AccessRead, access)
}

func TestGetNote_InvisibleIsNotFound(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	// The note exists but user2 holds no grant. The error must be NotFound,
	// not Forbidden, so callers cannot probe which ids exist.
	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "owner1"}, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(models.ShareGrant{}, store.ErrItemNotFound)

	_, _, err := svc.GetNote(ctx, models.User{Id: "user2"}, "note1")
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.NotErrorIs(t, err, service.ErrForbidden)
}

func TestGetNote_Missing(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "nope").Return(models.Note{}, store.ErrItemNotFound)

	_, _, err := svc.GetNote(ctx, models.User{Id: "user1"}, "nope")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestUpdateNote_WriteGrantee(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	note := models.Note{Id: "note1", OwnerId: "owner1", Title: "Old"}
	mockStore.On("GetNote", ctx, "note1").Return(note, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(
		models.ShareGrant{Permission: models.PermissionWrite}, nil)

	newTitle := "New"
	mockStore.On("UpdateNote", ctx, mock.MatchedBy(func(n models.Note) bool {
		return n.Title == "New"
	}), []string{"Title"}).Return(models.Note{Id: "note1", Title: "New"}, nil)

	updated, err := svc.UpdateNote(ctx, models.User{Id: "user2"}, "note1", service.NoteUpdateParams{Title: &newTitle})
	assert.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
}

func TestUpdateNote_Pin(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	note := models.Note{Id: "note1", OwnerId: "user1", Title: "Doc"}
	mockStore.On("GetNote", ctx, "note1").Return(note, nil)

	pinned := true
	mockStore.On("UpdateNote", ctx, mock.MatchedBy(func(n models.Note) bool {
		return n.Pinned
	}), []string{"Pinned"}).Return(models.Note{Id: "note1", Title: "Doc", Pinned: true}, nil)

	updated, err := svc.UpdateNote(ctx, models.User{Id: "user1"}, "note1", service.NoteUpdateParams{Pinned: &pinned})
	assert.NoError(t, err)
	assert.True(t, updated.Pinned)
}

func TestUpdateNote_ReadGranteeForbidden(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "owner1"}, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(
		models.ShareGrant{Permission: models.PermissionRead}, nil)

	newTitle := "New"
	_, err := svc.UpdateNote(ctx, models.User{Id: "user2"}, "note1", service.NoteUpdateParams{Title: &newTitle})
	assert.ErrorIs(t, err, service.ErrForbidden)
	mockStore.AssertNotCalled(t, "UpdateNote", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateNote_NoFieldsIsNoop(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	note := models.Note{Id: "note1", OwnerId: "user1", Title: "Same"}
	mockStore.On("GetNote", ctx, "note1").Return(note, nil)

	got, err := svc.UpdateNote(ctx, models.User{Id: "user1"}, "note1", service.NoteUpdateParams{})
	assert.NoError(t, err)
	assert.Equal(t, "Same", got.Title)
	mockStore.AssertNotCalled(t, "UpdateNote", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteNote_OwnerEnqueuesCleanup(t *testing.T) {
	svc, mockStore, mockMQ := setupService(t)
	ctx := context.Background()

	note := models.Note{Id: "note1", OwnerId: "user1"}
	mockStore.On("GetNote", ctx, "note1").Return(note, nil)
	mockStore.On("DeleteNote", ctx, "note1").Return(nil)

	mqSendDone := wrapMockWithSignal(mockMQ.On("Send", mock.Anything, mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, `"noteId":"note1"`)
	})).Return(nil))

	err := svc.DeleteNote(ctx, models.User{Id: "user1"}, "note1")
	assert.NoError(t, err)

	select {
	case <-mqSendDone:
	case <-time.After(1 * time.Second):
		assert.Fail(t, "timed out waiting for MQ Send")
	}
}

func TestDeleteNote_WriteGranteeForbidden(t *testing.T) {
	svc, mockStore, mockMQ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "owner1"}, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(
		models.ShareGrant{Permission: models.PermissionWrite}, nil)

	err := svc.DeleteNote(ctx, models.User{Id: "user2"}, "note1")
	assert.ErrorIs(t, err, service.ErrForbidden)
	mockStore.AssertNotCalled(t, "DeleteNote", mock.Anything, mock.Anything)
	mockMQ.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
