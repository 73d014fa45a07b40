package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gofrs/uuid/v5"

	"github.com/C0de-cloud/Notes-API/models"
	"github.com/C0de-cloud/Notes-API/store"
)

// Single-table layout:
//
//	USER#<id>   / PROFILE         user profile
//	EMAIL#<e>   / UNIQUE          email uniqueness reservation
//	UNAME#<u>   / UNIQUE          username uniqueness reservation
//	NOTE#<id>   / META            note document
//	NOTE#<id>   / GRANT#<userId>  share grant
//	COLL#<id>   / META            collection document
//	COLL#<id>   / NOTE#<noteId>   collection membership
//
// GSI_Owner   (OwnerId)   -> notes and collections of a user
// GSI_Grantee (GranteeId) -> grants naming a user
// GSI_Note    (NoteId)    -> collection memberships of a note
const (
	gsiOwner   = "GSI_Owner"
	gsiGrantee = "GSI_Grantee"
	gsiNote    = "GSI_Note"
)

type DynamoNotesStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoNotesStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoNotesStore, error) {
	client, err := newDynamoDBClient(ctx, devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoNotesStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoNotesStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	userId, err := uuid.NewV4()
	if err != nil {
		return models.User{}, err
	}
	user.Id = userId.String()
	user.Created = time.Now().Unix()
	user.Updated = user.Created

	// Reserve email first, then username. If the username is taken, release
	// the email reservation again so a retry with another username works.
	if err := createItem(dynamoStore, ctx, emailUniqueItem(user.Email, user.Id)); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return models.User{}, fmt.Errorf("email taken: %w", store.ErrConditionFailed)
		}
		return models.User{}, err
	}
	if err := createItem(dynamoStore, ctx, usernameUniqueItem(user.Username, user.Id)); err != nil {
		ei := emailUniqueItem(user.Email, user.Id)
		deleteItem(dynamoStore, ctx, ei.PK, ei.SK)
		if errors.Is(err, store.ErrConditionFailed) {
			return models.User{}, fmt.Errorf("username taken: %w", store.ErrConditionFailed)
		}
		return models.User{}, err
	}

	if err := createItem(dynamoStore, ctx, userToDynamo(user)); err != nil {
		// Release both reservations, otherwise the email and username stay
		// blocked with no profile behind them.
		ei := emailUniqueItem(user.Email, user.Id)
		deleteItem(dynamoStore, ctx, ei.PK, ei.SK)
		ui := usernameUniqueItem(user.Username, user.Id)
		deleteItem(dynamoStore, ctx, ui.PK, ui.SK)
		return models.User{}, err
	}

	return user, nil
}

func (dynamoStore *DynamoNotesStore) GetUser(ctx context.Context, userId string) (models.User, error) {
	du, err := getItem[dynamoUser](dynamoStore, ctx, "USER#"+userId, "PROFILE", false)
	if err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoNotesStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	ref, err := getItem[uniqueItem](dynamoStore, ctx, "EMAIL#"+strings.ToLower(email), "UNIQUE", false)
	if err != nil {
		return models.User{}, err
	}

	return dynamoStore.GetUser(ctx, ref.UserId)
}

func (dynamoStore *DynamoNotesStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	ref, err := getItem[uniqueItem](dynamoStore, ctx, "UNAME#"+username, "UNIQUE", false)
	if err != nil {
		return models.User{}, err
	}

	return dynamoStore.GetUser(ctx, ref.UserId)
}

func (dynamoStore *DynamoNotesStore) UpdateUser(ctx context.Context, user models.User, fields []string) (models.User, error) {
	old, err := dynamoStore.GetUser(ctx, user.Id)
	if err != nil {
		return models.User{}, err
	}

	// Move uniqueness reservations when email or username change.
	for _, f := range fields {
		switch f {
		case "Email":
			if !strings.EqualFold(old.Email, user.Email) {
				if err := createItem(dynamoStore, ctx, emailUniqueItem(user.Email, user.Id)); err != nil {
					if errors.Is(err, store.ErrConditionFailed) {
						return models.User{}, fmt.Errorf("email taken: %w", store.ErrConditionFailed)
					}
					return models.User{}, err
				}
				oi := emailUniqueItem(old.Email, user.Id)
				deleteItem(dynamoStore, ctx, oi.PK, oi.SK)
			}
		case "Username":
			if old.Username != user.Username {
				if err := createItem(dynamoStore, ctx, usernameUniqueItem(user.Username, user.Id)); err != nil {
					if errors.Is(err, store.ErrConditionFailed) {
						return models.User{}, fmt.Errorf("username taken: %w", store.ErrConditionFailed)
					}
					return models.User{}, err
				}
				oi := usernameUniqueItem(old.Username, user.Id)
				deleteItem(dynamoStore, ctx, oi.PK, oi.SK)
			}
		}
	}

	user.Updated = time.Now().Unix()
	du, err := updateItem(dynamoStore, ctx, userToDynamo(user), append(fields, "Updated"))
	if err != nil {
		return models.User{}, err
	}

	return userFromDynamo(du), nil
}

func (dynamoStore *DynamoNotesStore) DeleteUser(ctx context.Context, user models.User) error {
	if _, err := deleteItem(dynamoStore, ctx, "USER#"+user.Id, "PROFILE"); err != nil {
		return err
	}
	ei := emailUniqueItem(user.Email, user.Id)
	if _, err := deleteItem(dynamoStore, ctx, ei.PK, ei.SK); err != nil {
		return err
	}
	ui := usernameUniqueItem(user.Username, user.Id)
	if _, err := deleteItem(dynamoStore, ctx, ui.PK, ui.SK); err != nil {
		return err
	}
	return nil
}

func (dynamoStore *DynamoNotesStore) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	noteId, err := uuid.NewV4()
	if err != nil {
		return models.Note{}, err
	}
	note.Id = noteId.String()
	note.Created = time.Now().Unix()
	note.Updated = note.Created

	if err := createItem(dynamoStore, ctx, noteToDynamo(note)); err != nil {
		return models.Note{}, err
	}

	return note, nil
}

func (dynamoStore *DynamoNotesStore) GetNote(ctx context.Context, noteId string) (models.Note, error) {
	dn, err := getItem[dynamoNote](dynamoStore, ctx, "NOTE#"+noteId, "META", false)
	if err != nil {
		return models.Note{}, err
	}

	return noteFromDynamo(dn), nil
}

func (dynamoStore *DynamoNotesStore) UpdateNote(ctx context.Context, note models.Note, fields []string) (models.Note, error) {
	note.Updated = time.Now().Unix()
	dn, err := updateItem(dynamoStore, ctx, noteToDynamo(note), append(fields, "Updated"))
	if err != nil {
		return models.Note{}, err
	}

	return noteFromDynamo(dn), nil
}

func (dynamoStore *DynamoNotesStore) DeleteNote(ctx context.Context, noteId string) error {
	deleted, err := deleteItem(dynamoStore, ctx, "NOTE#"+noteId, "META")
	if err != nil {
		return err
	}
	if !deleted {
		return store.ErrItemNotFound
	}
	return nil
}

func (dynamoStore *DynamoNotesStore) GetOwnedNotes(ctx context.Context, ownerId string) ([]models.Note, error) {
	// GSI_Owner also carries the user's collections; keep note items only.
	items, err := queryAllByGSI[dynamoNote](dynamoStore, ctx, gsiOwner, "OwnerId", ownerId)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(items))
	for _, dn := range items {
		if strings.HasPrefix(dn.PK, "NOTE#") && dn.SK == "META" {
			notes = append(notes, noteFromDynamo(dn))
		}
	}

	return notes, nil
}

func (dynamoStore *DynamoNotesStore) GetNotesByIds(ctx context.Context, noteIds []string) ([]models.Note, error) {
	if len(noteIds) == 0 {
		return []models.Note{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(noteIds))
	for _, id := range noteIds {
		keys = append(keys, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "NOTE#" + id},
			"SK": &types.AttributeValueMemberS{Value: "META"},
		})
	}

	items, err := batchGetItems[dynamoNote](dynamoStore, ctx, keys)
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(items))
	for _, dn := range items {
		notes = append(notes, noteFromDynamo(dn))
	}

	return notes, nil
}

func (dynamoStore *DynamoNotesStore) PutGrant(ctx context.Context, grant models.ShareGrant) (models.ShareGrant, error) {
	now := time.Now().Unix()
	existing, err := dynamoStore.GetGrant(ctx, grant.NoteId, grant.GranteeId)
	switch {
	case err == nil:
		grant.Created = existing.Created
	case errors.Is(err, store.ErrItemNotFound):
		grant.Created = now
	default:
		return models.ShareGrant{}, err
	}
	grant.Updated = now

	// Unconditional put: re-sharing overwrites, concurrent grants race as
	// last-write-wins.
	if err := putItem(dynamoStore, ctx, grantToDynamo(grant)); err != nil {
		return models.ShareGrant{}, err
	}

	return grant, nil
}

func (dynamoStore *DynamoNotesStore) GetGrant(ctx context.Context, noteId string, granteeId string) (models.ShareGrant, error) {
	dg, err := getItem[dynamoGrant](dynamoStore, ctx, "NOTE#"+noteId, "GRANT#"+granteeId, false)
	if err != nil {
		return models.ShareGrant{}, err
	}

	return grantFromDynamo(dg), nil
}

func (dynamoStore *DynamoNotesStore) DeleteGrant(ctx context.Context, noteId string, granteeId string) error {
	// Deleting an absent grant is not an error.
	_, err := deleteItem(dynamoStore, ctx, "NOTE#"+noteId, "GRANT#"+granteeId)
	return err
}

func (dynamoStore *DynamoNotesStore) GetGrantsForNote(ctx context.Context, noteId string) ([]models.ShareGrant, error) {
	items, err := queryAllByPK[dynamoGrant](dynamoStore, ctx, "NOTE#"+noteId, "GRANT#", 0)
	if err != nil {
		return nil, err
	}

	grants := make([]models.ShareGrant, 0, len(items))
	for _, dg := range items {
		grants = append(grants, grantFromDynamo(dg))
	}

	return grants, nil
}

func (dynamoStore *DynamoNotesStore) GetGrantsForGrantee(ctx context.Context, granteeId string) ([]models.ShareGrant, error) {
	items, err := queryAllByGSI[dynamoGrant](dynamoStore, ctx, gsiGrantee, "GranteeId", granteeId)
	if err != nil {
		return nil, err
	}

	grants := make([]models.ShareGrant, 0, len(items))
	for _, dg := range items {
		grants = append(grants, grantFromDynamo(dg))
	}

	return grants, nil
}

func (dynamoStore *DynamoNotesStore) DeleteGrantsForNote(ctx context.Context, noteId string) error {
	return deleteAllByPK(dynamoStore, ctx, "NOTE#"+noteId, "GRANT#")
}

func (dynamoStore *DynamoNotesStore) CreateCollection(ctx context.Context, collection models.Collection) (models.Collection, error) {
	collectionId, err := uuid.NewV4()
	if err != nil {
		return models.Collection{}, err
	}
	collection.Id = collectionId.String()
	collection.Created = time.Now().Unix()
	collection.Updated = collection.Created

	if err := createItem(dynamoStore, ctx, collectionToDynamo(collection)); err != nil {
		return models.Collection{}, err
	}

	return collection, nil
}

func (dynamoStore *DynamoNotesStore) GetCollection(ctx context.Context, collectionId string) (models.Collection, error) {
	dc, err := getItem[dynamoCollection](dynamoStore, ctx, "COLL#"+collectionId, "META", false)
	if err != nil {
		return models.Collection{}, err
	}

	return collectionFromDynamo(dc), nil
}

func (dynamoStore *DynamoNotesStore) UpdateCollection(ctx context.Context, collection models.Collection, fields []string) (models.Collection, error) {
	collection.Updated = time.Now().Unix()
	dc, err := updateItem(dynamoStore, ctx, collectionToDynamo(collection), append(fields, "Updated"))
	if err != nil {
		return models.Collection{}, err
	}

	return collectionFromDynamo(dc), nil
}

func (dynamoStore *DynamoNotesStore) DeleteCollection(ctx context.Context, collectionId string) error {
	deleted, err := deleteItem(dynamoStore, ctx, "COLL#"+collectionId, "META")
	if err != nil {
		return err
	}
	if !deleted {
		return store.ErrItemNotFound
	}

	// Memberships live in the same partition; purge them with the meta item.
	return deleteAllByPK(dynamoStore, ctx, "COLL#"+collectionId, "NOTE#")
}

func (dynamoStore *DynamoNotesStore) GetOwnedCollections(ctx context.Context, ownerId string) ([]models.Collection, error) {
	items, err := queryAllByGSI[dynamoCollection](dynamoStore, ctx, gsiOwner, "OwnerId", ownerId)
	if err != nil {
		return nil, err
	}

	collections := make([]models.Collection, 0, len(items))
	for _, dc := range items {
		if strings.HasPrefix(dc.PK, "COLL#") && dc.SK == "META" {
			collections = append(collections, collectionFromDynamo(dc))
		}
	}

	return collections, nil
}

func (dynamoStore *DynamoNotesStore) AddNoteToCollection(ctx context.Context, member models.CollectionMember) (bool, error) {
	member.AddedAt = time.Now().Unix()
	return ensureItem(dynamoStore, ctx, memberToDynamo(member))
}

func (dynamoStore *DynamoNotesStore) RemoveNoteFromCollection(ctx context.Context, collectionId string, noteId string) (bool, error) {
	return deleteItem(dynamoStore, ctx, "COLL#"+collectionId, "NOTE#"+noteId)
}

func (dynamoStore *DynamoNotesStore) GetCollectionMembers(ctx context.Context, collectionId string) ([]models.CollectionMember, error) {
	items, err := queryAllByPK[dynamoMember](dynamoStore, ctx, "COLL#"+collectionId, "NOTE#", 0)
	if err != nil {
		return nil, err
	}

	members := make([]models.CollectionMember, 0, len(items))
	for _, dm := range items {
		members = append(members, memberFromDynamo(dm))
	}

	return members, nil
}

func (dynamoStore *DynamoNotesStore) DeleteMembershipsForNote(ctx context.Context, noteId string) error {
	return batchDeleteByGSIThrottled(dynamoStore, ctx, gsiNote, "NoteId", noteId, 50*time.Millisecond)
}
