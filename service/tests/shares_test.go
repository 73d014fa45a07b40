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

func TestShareNote_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	owner := models.User{Id: "user1"}
	note := models.Note{Id: "note1", OwnerId: "user1"}

	mockStore.On("GetNote", ctx, "note1").Return(note, nil)
	mockStore.On("GetUser", ctx, "user2").Return(models.User{Id: "user2"}, nil)
	mockStore.On("PutGrant", ctx, mock.MatchedBy(func(grant models.ShareGrant) bool {
		return grant.NoteId == "note1" && grant.GranteeId == "user2" && grant.Permission == models.PermissionRead
	})).Return(models.ShareGrant{NoteId: "note1", GranteeId: "user2", Permission: models.PermissionRead}, nil)

	grant, err := svc.ShareNote(ctx, owner, "note1", "user2", models.PermissionRead)
	assert.NoError(t, err)
	assert.Equal(t, models.PermissionRead, grant.Permission)
}

func TestShareNote_OverwritesExistingGrant(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)
	mockStore.On("GetUser", ctx, "user2").Return(models.User{Id: "user2"}, nil)
	// Re-sharing just puts the new permission; no existence check first
	mockStore.On("PutGrant", ctx, mock.MatchedBy(func(grant models.ShareGrant) bool {
		return grant.Permission == models.PermissionWrite
	})).Return(models.ShareGrant{NoteId: "note1", GranteeId: "user2", Permission: models.PermissionWrite}, nil)

	grant, err := svc.ShareNote(ctx, models.User{Id: "user1"}, "note1", "user2", models.PermissionWrite)
	assert.NoError(t, err)
	assert.Equal(t, models.PermissionWrite, grant.Permission)
}

func TestShareNote_SelfShareRejected(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)

	_, err := svc.ShareNote(ctx, models.User{Id: "user1"}, "note1", "user1", models.PermissionRead)
	assert.ErrorIs(t, err, service.ErrValidation)
	mockStore.AssertNotCalled(t, "PutGrant", mock.Anything, mock.Anything)
}

func TestShareNote_UnknownGrantee(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)
	mockStore.On("GetUser", ctx, "ghost").Return(models.User{}, store.ErrItemNotFound)

	_, err := svc.ShareNote(ctx, models.User{Id: "user1"}, "note1", "ghost", models.PermissionRead)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestShareNote_InvalidPermission(t *testing.T) {
	svc, mockStore, _ := setupService(t)

	_, err := svc.ShareNote(context.Background(), models.User{Id: "user1"}, "note1", "user2", "admin")
	assert.ErrorIs(t, err, service.ErrValidation)
	mockStore.AssertNotCalled(t, "GetNote", mock.Anything, mock.Anything)
}

func TestShareNote_GranteeCannotManageSharing(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	// user2 holds a write grant but is not the owner
	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(
		models.ShareGrant{Permission: models.PermissionWrite}, nil)

	_, err := svc.ShareNote(ctx, models.User{Id: "user2"}, "note1", "user3", models.PermissionRead)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestUpdateShare_RefusesToCreate(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(models.ShareGrant{}, store.ErrItemNotFound)

	_, err := svc.UpdateShare(ctx, models.User{Id: "user1"}, "note1", "user2", models.PermissionWrite)
	assert.ErrorIs(t, err, service.ErrNotFound)
	mockStore.AssertNotCalled(t, "PutGrant", mock.Anything, mock.Anything)
}

func TestUpdateShare_ChangesPermission(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	existing := models.ShareGrant{NoteId: "note1", GranteeId: "user2", Permission: models.PermissionRead, Created: 100}
	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(existing, nil)
	mockStore.On("PutGrant", ctx, mock.MatchedBy(func(grant models.ShareGrant) bool {
		return grant.Permission == models.PermissionWrite && grant.Created == 100
	})).Return(models.ShareGrant{NoteId: "note1", GranteeId: "user2", Permission: models.PermissionWrite}, nil)

	grant, err := svc.UpdateShare(ctx, models.User{Id: "user1"}, "note1", "user2", models.PermissionWrite)
	assert.NoError(t, err)
	assert.Equal(t, models.PermissionWrite, grant.Permission)
}

func TestRevokeShare_Idempotent(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)
	// The store delete succeeds whether or not the grant existed
	mockStore.On("DeleteGrant", ctx, "note1", "user2").Return(nil)

	err := svc.RevokeShare(ctx, models.User{Id: "user1"}, "note1", "user2")
	assert.NoError(t, err)

	err = svc.RevokeShare(ctx, models.User{Id: "user1"}, "note1", "user2")
	assert.NoError(t, err)
}

func TestListShares_OwnerOnly(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)
	mockStore.On("GetGrant", ctx, "note1", "user2").Return(
		models.ShareGrant{Permission: models.PermissionRead}, nil)

	_, err := svc.ListShares(ctx, models.User{Id: "user2"}, "note1")
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestListShares_Success(t *testing.T) {
	svc, mockStore, _ := setupService(t)
	ctx := context.Background()

	grants := []models.ShareGrant{
		{NoteId: "note1", GranteeId: "user2", Permission: models.PermissionRead},
		{NoteId: "note1", GranteeId: "user3", Permission: models.PermissionWrite},
	}
	mockStore.On("GetNote", ctx, "note1").Return(models.Note{Id: "note1", OwnerId: "user1"}, nil)
	mockStore.On("GetGrantsForNote", ctx, "note1").Return(grants, nil)

	got, err := svc.ListShares(ctx, models.User{Id: "user1"}, "note1")
	assert.NoError(t, err)
	assert.Len(t, got, 2)
}
