package store

import (
	"context"
	"errors"

	"github.com/C0de-cloud/Notes-API/models"
)

type NotesStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, userId string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User, fields []string) (models.User, error)
	DeleteUser(ctx context.Context, user models.User) error

	CreateNote(ctx context.Context, note models.Note) (models.Note, error)
	GetNote(ctx context.Context, noteId string) (models.Note, error)
	UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error)
	DeleteNote(ctx context.Context, noteId string) error
	GetOwnedNotes(ctx context.Context, ownerId string) ([]models.Note, error)
	GetNotesByIds(ctx context.Context, noteIds []string) ([]models.Note, error)

	PutGrant(ctx context.Context, grant models.ShareGrant) (models.ShareGrant, error)
	GetGrant(ctx context.Context, noteId string, granteeId string) (models.ShareGrant, error)
	DeleteGrant(ctx context.Context, noteId string, granteeId string) error
	GetGrantsForNote(ctx context.Context, noteId string) ([]models.ShareGrant, error)
	GetGrantsForGrantee(ctx context.Context, granteeId string) ([]models.ShareGrant, error)
	DeleteGrantsForNote(ctx context.Context, noteId string) error

	CreateCollection(ctx context.Context, collection models.Collection) (models.Collection, error)
	GetCollection(ctx context.Context, collectionId string) (models.Collection, error)
	UpdateCollection(ctx context.Context, collection models.Collection, fields []string) (models.Collection, error)
	DeleteCollection(ctx context.Context, collectionId string) error
	GetOwnedCollections(ctx context.Context, ownerId string) ([]models.Collection, error)
	AddNoteToCollection(ctx context.Context, member models.CollectionMember) (bool, error)
	RemoveNoteFromCollection(ctx context.Context, collectionId string, noteId string) (bool, error)
	GetCollectionMembers(ctx context.Context, collectionId string) ([]models.CollectionMember, error)
	DeleteMembershipsForNote(ctx context.Context, noteId string) error
}

// Custom error types for clarity
var (
	ErrItemNotFound    = errors.New("item does not exist")
	ErrConditionFailed = errors.New("condition not met")
)
