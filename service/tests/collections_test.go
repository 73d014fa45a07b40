package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/C0de-cloud/Notes-API/models"
	"github.com/C0de-cloud/Notes-API/service"
	"github.com/C0de-cloud/Notes-API/store"
)

func TestCreateCollection_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("CreateCollection", ctx, mock.MatchedBy(func(c models.Collection) bool {
		return c.OwnerId == "user1" && c.Name == "Work"
	})).Return(models.Collection{Id: "coll1", OwnerId: "user1", Name: "Work"}, nil)

	collection, err := svc.CreateCollection(ctx, models.User{Id: "user1"}, service.CollectionParams{Name: "Work"})
	assert.NoError(t, err)
	assert.Equal(t, "coll1", collection.Id)
}

func TestCreateCollection_EmptyName(t *testing.T) {
	svc, mockStore, _ := setupService(t)

	_, err := svc.CreateCollection(context.Background(), models.User{Id: "user1"}, service.CollectionParams{})
	assert.ErrorIs(t, err, service.ErrValidation)
	mockStore.AssertNotCalled(t, "CreateCollection", mock.Anything, mock.Anything)
}

func TestListCollections_SortedByName(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	collections := []models.Collection{
		{Id: "c2", OwnerId: "user1", Name: "Work"},
		{Id: "c1", OwnerId: "user1", Name: "Home"},
	}
	mockStore.On("GetOwnedCollections", ctx, "user1").Return(collections, nil)

	got, err := svc.ListCollections(ctx, models.User{Id: "user1"})
	assert.NoError(t, err)
	assert.Equal(t, "Home", got[0].Name)
	assert.Equal(t, "Work", got[1].Name)
}

func TestGetCollection_ForeignCollectionHidden(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	// Someone else's collection resolves but must look nonexistent
	mockStore.On("GetCollection", ctx, "coll1").Return(models.Collection{Id: "coll1", OwnerId: "user2"}, nil)

	_, _, err := svc.GetCollection(ctx, models.User{Id: "user1"}, "coll1")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetCollection_NotesInMembershipOrder(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	collection := models.Collection{Id: "coll1", OwnerId: "user1", Name: "Work"}
	members := []models.CollectionMember{
		{CollectionId: "coll1", NoteId: "n2", AddedAt: 200},
		{CollectionId: "coll1", NoteId: "n1", AddedAt: 100},
	}
	// The batch fetch comes back in arbitrary order
	notes := []models.Note{
		{Id: "n2", OwnerId: "user1", Title: "Second"},
		{Id: "n1", OwnerId: "user1", Title: "First"},
	}

	mockStore.On("GetCollection", ctx, "coll1").Return(collection, nil)
	mockStore.On("GetCollectionMembers", ctx, "coll1").Return(members, nil)
	mockStore.On("GetNotesByIds", ctx, []string{"n1", "n2"}).Return(notes, nil)

	_, got, err := svc.GetCollection(ctx, models.User{Id: "user1"}, "coll1")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "n1", got[0].Id)
	assert.Equal(t, "n2", got[1].Id)
}

func TestUpdateCollection_ChangesName(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	collection := models.Collection{Id: "coll1", OwnerId: "user1", Name: "Old"}
	newName := "New"

	mockStore.On("GetCollection", ctx, "coll1").Return(collection, nil)
	mockStore.On("UpdateCollection", ctx, mock.MatchedBy(func(c models.Collection) bool {
		return c.Name == "New"
	}), []string{"Name"}).Return(models.Collection{Id: "coll1", Name: "New"}, nil)

	updated, err := svc.UpdateCollection(ctx, models.User{Id: "user1"}, "coll1", service.CollectionUpdateParams{Name: &newName})
	assert.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
}

func TestDeleteCollection_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetCollection", ctx, "coll1").Return(models.Collection{Id: "coll1", OwnerId: "user1"}, nil)
	mockStore.On("DeleteCollection", ctx, "coll1").Return(nil)

	err := svc.DeleteCollection(ctx, models.User{Id: "user1"}, "coll1")
	assert.NoError(t, err)
}

func TestAddNotesToCollection_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetCollection", ctx, "coll1").Return(models.Collection{Id: "coll1", OwnerId: "user1"}, nil)
	mockStore.On("GetNote", ctx, "n1").Return(models.Note{Id: "n1", OwnerId: "user1"}, nil)
	mockStore.On("GetNote", ctx, "n2").Return(models.Note{Id: "n2", OwnerId: "user1"}, nil)
	mockStore.On("AddNoteToCollection", ctx, mock.Anything).Return(true, nil)

	err := svc.AddNotesToCollection(ctx, models.User{Id: "user1"}, "coll1", []string{"n1", "n2"})
	assert.NoError(t, err)
	mockStore.AssertNumberOfCalls(t, "AddNoteToCollection", 2)
}

func TestAddNotesToCollection_SharedNoteRejected(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	// Collections only hold the caller's own notes; a granted note is not enough
	mockStore.On("GetCollection", ctx, "coll1").Return(models.Collection{Id: "coll1", OwnerId: "user1"}, nil)
	mockStore.On("GetNote", ctx, "n1").Return(models.Note{Id: "n1", OwnerId: "user2"}, nil)
	mockStore.On("GetGrant", ctx, "n1", "user1").Return(
		models.ShareGrant{Permission: models.PermissionWrite}, nil)

	err := svc.AddNotesToCollection(ctx, models.User{Id: "user1"}, "coll1", []string{"n1"})
	assert.ErrorIs(t, err, service.ErrForbidden)
	mockStore.AssertNotCalled(t, "AddNoteToCollection", mock.Anything, mock.Anything)
}

func TestAddNotesToCollection_DuplicateIsNoop(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetCollection", ctx, "coll1").Return(models.Collection{Id: "coll1", OwnerId: "user1"}, nil)
	mockStore.On("GetNote", ctx, "n1").Return(models.Note{Id: "n1", OwnerId: "user1"}, nil)
	// false means the membership already existed
	mockStore.On("AddNoteToCollection", ctx, mock.Anything).Return(false, nil)

	err := svc.AddNotesToCollection(ctx, models.User{Id: "user1"}, "coll1", []string{"n1"})
	assert.NoError(t, err)
}

func TestRemoveNoteFromCollection_AbsentMembership(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetCollection", ctx, "coll1").Return(models.Collection{Id: "coll1", OwnerId: "user1"}, nil)
	mockStore.On("RemoveNoteFromCollection", ctx, "coll1", "n1").Return(false, nil)

	err := svc.RemoveNoteFromCollection(ctx, models.User{Id: "user1"}, "coll1", "n1")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRemoveNoteFromCollection_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetCollection", ctx, "coll1").Return(models.Collection{Id: "coll1", OwnerId: "user1"}, nil)
	mockStore.On("RemoveNoteFromCollection", ctx, "coll1", "n1").Return(true, nil)

	err := svc.RemoveNoteFromCollection(ctx, models.User{Id: "user1"}, "coll1", "n1")
	assert.NoError(t, err)
}

func TestGetCollection_Missing(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetCollection", ctx, "nope").Return(models.Collection{}, store.ErrItemNotFound)

	_, _, err := svc.GetCollection(ctx, models.User{Id: "user1"}, "nope")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
