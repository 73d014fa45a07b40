package service

import (
	"context"
	"errors"
	"sort"

	"github.com/C0de-cloud/Notes-API/models"
	"github.com/C0de-cloud/Notes-API/store"
)

type CollectionParams struct {
	Name        string
	Description string
	Color       string
}

func (s *Service) CreateCollection(ctx context.Context, user models.User, params CollectionParams) (models.Collection, error) {
	if err := ValidateCollectionName(params.Name); err != nil {
		return models.Collection{}, err
	}
	if err := ValidateColor(params.Color); err != nil {
		return models.Collection{}, err
	}

	collection := models.Collection{
		OwnerId:     user.Id,
		Name:        params.Name,
		Description: params.Description,
		Color:       params.Color,
	}

	return s.Store.CreateCollection(ctx, collection)
}

func (s *Service) ListCollections(ctx context.Context, user models.User) ([]models.Collection, error) {
	collections, err := s.Store.GetOwnedCollections(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	sort.Slice(collections, func(i, j int) bool {
		if collections[i].Name != collections[j].Name {
			return collections[i].Name < collections[j].Name
		}
		return collections[i].Id < collections[j].Id
	})

	return collections, nil
}

// getOwnedCollection hides collections of other users as not-found.
// Collections are not shareable; only the owner ever sees one.
func (s *Service) getOwnedCollection(ctx context.Context, user models.User, collectionId string) (models.Collection, error) {
	collection, err := s.Store.GetCollection(ctx, collectionId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Collection{}, notFoundError("collection " + collectionId)
		}
		return models.Collection{}, err
	}
	if collection.OwnerId != user.Id {
		return models.Collection{}, notFoundError("collection " + collectionId)
	}
	return collection, nil
}

// GetCollection resolves the collection and its member notes in membership
// order: AddedAt ascending, note id ascending as tiebreaker.
func (s *Service) GetCollection(ctx context.Context, user models.User, collectionId string) (models.Collection, []models.Note, error) {
	collection, err := s.getOwnedCollection(ctx, user, collectionId)
	if err != nil {
		return models.Collection{}, nil, err
	}

	notes, err := s.collectionNotes(ctx, collection)
	if err != nil {
		return models.Collection{}, nil, err
	}

	return collection, notes, nil
}

func (s *Service) collectionNotes(ctx context.Context, collection models.Collection) ([]models.Note, error) {
	members, err := s.Store.GetCollectionMembers(ctx, collection.Id)
	if err != nil {
		return nil, err
	}

	sort.Slice(members, func(i, j int) bool {
		if members[i].AddedAt != members[j].AddedAt {
			return members[i].AddedAt < members[j].AddedAt
		}
		return members[i].NoteId < members[j].NoteId
	})

	noteIds := make([]string, 0, len(members))
	for _, member := range members {
		noteIds = append(noteIds, member.NoteId)
	}

	notes, err := s.Store.GetNotesByIds(ctx, noteIds)
	if err != nil {
		return nil, err
	}

	// BatchGetItem does not preserve request order; restore membership order.
	byId := make(map[string]models.Note, len(notes))
	for _, note := range notes {
		byId[note.Id] = note
	}

	ordered := make([]models.Note, 0, len(members))
	for _, member := range members {
		if note, ok := byId[member.NoteId]; ok {
			ordered = append(ordered, note)
		}
	}

	return ordered, nil
}

type CollectionUpdateParams struct {
	Name        *string
	Description *string
	Color       *string
}

func (s *Service) UpdateCollection(ctx context.Context, user models.User, collectionId string, params CollectionUpdateParams) (models.Collection, error) {
	collection, err := s.getOwnedCollection(ctx, user, collectionId)
	if err != nil {
		return models.Collection{}, err
	}

	var fields []string
	if params.Name != nil {
		if err := ValidateCollectionName(*params.Name); err != nil {
			return models.Collection{}, err
		}
		collection.Name = *params.Name
		fields = append(fields, "Name")
	}
	if params.Description != nil {
		collection.Description = *params.Description
		fields = append(fields, "Description")
	}
	if params.Color != nil {
		if err := ValidateColor(*params.Color); err != nil {
			return models.Collection{}, err
		}
		collection.Color = *params.Color
		fields = append(fields, "Color")
	}

	if len(fields) == 0 {
		return collection, nil
	}

	updated, err := s.Store.UpdateCollection(ctx, collection, fields)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Collection{}, notFoundError("collection " + collectionId)
		}
		return models.Collection{}, err
	}

	return updated, nil
}

func (s *Service) DeleteCollection(ctx context.Context, user models.User, collectionId string) error {
	collection, err := s.getOwnedCollection(ctx, user, collectionId)
	if err != nil {
		return err
	}

	if err := s.Store.DeleteCollection(ctx, collection.Id); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return notFoundError("collection " + collectionId)
		}
		return err
	}

	return nil
}

// AddNotesToCollection links the given notes into the collection. Both the
// collection and every note must belong to the caller. Adding a note twice
// is a no-op.
func (s *Service) AddNotesToCollection(ctx context.Context, user models.User, collectionId string, noteIds []string) error {
	collection, err := s.getOwnedCollection(ctx, user, collectionId)
	if err != nil {
		return err
	}

	for _, noteId := range noteIds {
		note, access, err := s.getNoteForAccess(ctx, user, noteId, AccessRead)
		if err != nil {
			return err
		}
		if access != AccessOwner {
			return forbiddenError("only own notes can be collected")
		}

		member := models.CollectionMember{
			CollectionId: collection.Id,
			NoteId:       note.Id,
		}
		if _, err := s.Store.AddNoteToCollection(ctx, member); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) RemoveNoteFromCollection(ctx context.Context, user models.User, collectionId string, noteId string) error {
	collection, err := s.getOwnedCollection(ctx, user, collectionId)
	if err != nil {
		return err
	}

	removed, err := s.Store.RemoveNoteFromCollection(ctx, collection.Id, noteId)
	if err != nil {
		return err
	}
	if !removed {
		return notFoundError("note not in collection")
	}

	return nil
}
