package service

import (
	"context"
	"errors"

	"github.com/C0de-cloud/Notes-API/models"
	"github.com/C0de-cloud/Notes-API/store"
)

// getOwnedNote loads a note and requires the caller to be its owner.
// Non-owners with a grant get ErrForbidden; everyone else ErrNotFound.
func (s *Service) getOwnedNote(ctx context.Context, user models.User, noteId string) (models.Note, error) {
	note, access, err := s.getNoteForAccess(ctx, user, noteId, AccessRead)
	if err != nil {
		return models.Note{}, err
	}
	if access != AccessOwner {
		return models.Note{}, forbiddenError("only the owner may manage sharing")
	}
	return note, nil
}

// ShareNote grants granteeId access to the note. At most one grant exists per
// (note, grantee) pair: sharing again overwrites the previous permission.
func (s *Service) ShareNote(ctx context.Context, user models.User, noteId string, granteeId string, permission models.Permission) (models.ShareGrant, error) {
	if err := ValidatePermission(permission); err != nil {
		return models.ShareGrant{}, err
	}

	note, err := s.getOwnedNote(ctx, user, noteId)
	if err != nil {
		return models.ShareGrant{}, err
	}

	if granteeId == user.Id {
		return models.ShareGrant{}, validationError("cannot share a note with its owner")
	}

	if _, err := s.Store.GetUser(ctx, granteeId); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.ShareGrant{}, notFoundError("user " + granteeId)
		}
		return models.ShareGrant{}, err
	}

	grant := models.ShareGrant{
		NoteId:     note.Id,
		GranteeId:  granteeId,
		Permission: permission,
	}

	return s.Store.PutGrant(ctx, grant)
}

// UpdateShare changes the permission of an existing grant. Unlike ShareNote
// it refuses to create one.
func (s *Service) UpdateShare(ctx context.Context, user models.User, noteId string, granteeId string, permission models.Permission) (models.ShareGrant, error) {
	if err := ValidatePermission(permission); err != nil {
		return models.ShareGrant{}, err
	}

	note, err := s.getOwnedNote(ctx, user, noteId)
	if err != nil {
		return models.ShareGrant{}, err
	}

	grant, err := s.Store.GetGrant(ctx, note.Id, granteeId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.ShareGrant{}, notFoundError("share grant")
		}
		return models.ShareGrant{}, err
	}

	grant.Permission = permission
	return s.Store.PutGrant(ctx, grant)
}

// RevokeShare removes granteeId's access. Revoking a grant that does not
// exist is a no-op, not an error.
func (s *Service) RevokeShare(ctx context.Context, user models.User, noteId string, granteeId string) error {
	note, err := s.getOwnedNote(ctx, user, noteId)
	if err != nil {
		return err
	}

	return s.Store.DeleteGrant(ctx, note.Id, granteeId)
}

func (s *Service) ListShares(ctx context.Context, user models.User, noteId string) ([]models.ShareGrant, error) {
	note, err := s.getOwnedNote(ctx, user, noteId)
	if err != nil {
		return nil, err
	}

	return s.Store.GetGrantsForNote(ctx, note.Id)
}
