package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/C0de-cloud/Notes-API/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUser(ctx context.Context, userId string) (models.User, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) UpdateUser(ctx context.Context, user models.User, fields []string) (models.User, error) {
	args := m.Called(ctx, user, fields)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockStore) DeleteUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	args := m.Called(ctx, note)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) GetNote(ctx context.Context, noteId string) (models.Note, error) {
	args := m.Called(ctx, noteId)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error) {
	args := m.Called(ctx, note, fields)
	return args.Get(0).(models.Note), args.Error(1)
}

func (m *MockStore) DeleteNote(ctx context.Context, noteId string) error {
	args := m.Called(ctx, noteId)
	return args.Error(0)
}

func (m *MockStore) GetOwnedNotes(ctx context.Context, ownerId string) ([]models.Note, error) {
	args := m.Called(ctx, ownerId)
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockStore) GetNotesByIds(ctx context.Context, noteIds []string) ([]models.Note, error) {
	args := m.Called(ctx, noteIds)
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockStore) PutGrant(ctx context.Context, grant models.ShareGrant) (models.ShareGrant, error) {
	args := m.Called(ctx, grant)
	return args.Get(0).(models.ShareGrant), args.Error(1)
}

func (m *MockStore) GetGrant(ctx context.Context, noteId string, granteeId string) (models.ShareGrant, error) {
	args := m.Called(ctx, noteId, granteeId)
	return args.Get(0).(models.ShareGrant), args.Error(1)
}

func (m *MockStore) DeleteGrant(ctx context.Context, noteId string, granteeId string) error {
	args := m.Called(ctx, noteId, granteeId)
	return args.Error(0)
}

func (m *MockStore) GetGrantsForNote(ctx context.Context, noteId string) ([]models.ShareGrant, error) {
	args := m.Called(ctx, noteId)
	return args.Get(0).([]models.ShareGrant), args.Error(1)
}

func (m *MockStore) GetGrantsForGrantee(ctx context.Context, granteeId string) ([]models.ShareGrant, error) {
	args := m.Called(ctx, granteeId)
	return args.Get(0).([]models.ShareGrant), args.Error(1)
}

func (m *MockStore) DeleteGrantsForNote(ctx context.Context, noteId string) error {
	args := m.Called(ctx, noteId)
	return args.Error(0)
}

func (m *MockStore) CreateCollection(ctx context.Context, collection models.Collection) (models.Collection, error) {
	args := m.Called(ctx, collection)
	return args.Get(0).(models.Collection), args.Error(1)
}

func (m *MockStore) GetCollection(ctx context.Context, collectionId string) (models.Collection, error) {
	args := m.Called(ctx, collectionId)
	return args.Get(0).(models.Collection), args.Error(1)
}

func (m *MockStore) UpdateCollection(ctx context.Context, collection models.Collection, fields []string) (models.Collection, error) {
	args := m.Called(ctx, collection, fields)
	return args.Get(0).(models.Collection), args.Error(1)
}

func (m *MockStore) DeleteCollection(ctx context.Context, collectionId string) error {
	args := m.Called(ctx, collectionId)
	return args.Error(0)
}

func (m *MockStore) GetOwnedCollections(ctx context.Context, ownerId string) ([]models.Collection, error) {
	args := m.Called(ctx, ownerId)
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockStore) AddNoteToCollection(ctx context.Context, member models.CollectionMember) (bool, error) {
	args := m.Called(ctx, member)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) RemoveNoteFromCollection(ctx context.Context, collectionId string, noteId string) (bool, error) {
	args := m.Called(ctx, collectionId, noteId)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) GetCollectionMembers(ctx context.Context, collectionId string) ([]models.CollectionMember, error) {
	args := m.Called(ctx, collectionId)
	return args.Get(0).([]models.CollectionMember), args.Error(1)
}

func (m *MockStore) DeleteMembershipsForNote(ctx context.Context, noteId string) error {
	args := m.Called(ctx, noteId)
	return args.Error(0)
}
