package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/C0de-cloud/Notes-API/models"
	"github.com/C0de-cloud/Notes-API/store"
)

// AccessLevel is a caller's effective permission on a note,
// owner > write > read > none. Write implies read.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessRead
	AccessWrite
	AccessOwner
)

func (a AccessLevel) String() string {
	switch a {
	case AccessOwner:
		return "owner"
	case AccessWrite:
		return "write"
	case AccessRead:
		return "read"
	}
	return "none"
}

func accessFromPermission(p models.Permission) AccessLevel {
	switch p {
	case models.PermissionWrite:
		return AccessWrite
	case models.PermissionRead:
		return AccessRead
	}
	return AccessNone
}

// EffectivePermission evaluates what user may do with note. The owner holds
// full rights regardless of any grant rows; everyone else gets the level of
// their grant, or none.
func (s *Service) EffectivePermission(ctx context.Context, user models.User, note models.Note) (AccessLevel, error) {
	if user.Id == note.OwnerId {
		return AccessOwner, nil
	}

	grant, err := s.Store.GetGrant(ctx, note.Id, user.Id)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return AccessNone, nil
		}
		return AccessNone, err
	}

	return accessFromPermission(grant.Permission), nil
}

// getNoteForAccess loads a note and checks the caller holds at least the
// required level. A note outside the caller's visibility surfaces as
// ErrNotFound, never ErrForbidden, so existence is not leaked.
func (s *Service) getNoteForAccess(ctx context.Context, user models.User, noteId string, required AccessLevel) (models.Note, AccessLevel, error) {
	note, err := s.Store.GetNote(ctx, noteId)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Note{}, AccessNone, notFoundError("note " + noteId)
		}
		return models.Note{}, AccessNone, err
	}

	access, err := s.EffectivePermission(ctx, user, note)
	if err != nil {
		return models.Note{}, AccessNone, err
	}
	if access == AccessNone {
		return models.Note{}, AccessNone, notFoundError("note " + noteId)
	}
	if access < required {
		return models.Note{}, AccessNone, forbiddenError("insufficient permission on note")
	}

	return note, access, nil
}

type NoteParams struct {
	Title   string
	Content string
	Color   string
	Tags    []string
	Pinned  bool
}

func (params NoteParams) validate() error {
	if err := ValidateTitle(params.Title); err != nil {
		return err
	}
	if err := ValidateContent(params.Content); err != nil {
		return err
	}
	if err := ValidateColor(params.Color); err != nil {
		return err
	}
	return ValidateTags(params.Tags)
}

func (s *Service) CreateNote(ctx context.Context, user models.User, params NoteParams) (models.Note, error) {
	if err := params.validate(); err != nil {
		return models.Note{}, err
	}

	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	note := models.Note{
		OwnerId: user.Id,
		Title:   params.Title,
		Content: params.Content,
		Color:   params.Color,
		Tags:    tags,
		Pinned:  params.Pinned,
	}

	return s.Store.CreateNote(ctx, note)
}

func (s *Service) GetNote(ctx context.Context, user models.User, noteId string) (models.Note, AccessLevel, error) {
	return s.getNoteForAccess(ctx, user, noteId, AccessRead)
}

type NoteUpdateParams struct {
	Title   *string
	Content *string
	Color   *string
	Tags    []string
	Pinned  *bool
}

func (s *Service) UpdateNote(ctx context.Context, user models.User, noteId string, params NoteUpdateParams) (models.Note, error) {
	note, _, err := s.getNoteForAccess(ctx, user, noteId, AccessWrite)
	if err != nil {
		return models.Note{}, err
	}

	var fields []string
	if params.Title != nil {
		if err := ValidateTitle(*params.Title); err != nil {
			return models.Note{}, err
		}
		note.Title = *params.Title
		fields = append(fields, "Title")
	}
	if params.Content != nil {
		if err := ValidateContent(*params.Content); err != nil {
			return models.Note{}, err
		}
		note.Content = *params.Content
		fields = append(fields, "Content")
	}
	if params.Color != nil {
		if err := ValidateColor(*params.Color); err != nil {
			return models.Note{}, err
		}
		note.Color = *params.Color
		fields = append(fields, "Color")
	}
	if params.Tags != nil {
		if err := ValidateTags(params.Tags); err != nil {
			return models.Note{}, err
		}
		note.Tags = params.Tags
		fields = append(fields, "Tags")
	}
	if params.Pinned != nil {
		note.Pinned = *params.Pinned
		fields = append(fields, "Pinned")
	}

	if len(fields) == 0 {
		return note, nil
	}

	updated, err := s.Store.UpdateNote(ctx, note, fields)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Note{}, notFoundError("note " + noteId)
		}
		return models.Note{}, err
	}

	return updated, nil
}

// DeleteNote is owner-only; write grantees may edit but not destroy.
// Share grants and collection memberships referencing the note are purged
// asynchronously by the cleanup consumer.
func (s *Service) DeleteNote(ctx context.Context, user models.User, noteId string) error {
	note, access, err := s.getNoteForAccess(ctx, user, noteId, AccessRead)
	if err != nil {
		return err
	}
	if access != AccessOwner {
		return forbiddenError("only the owner may delete a note")
	}

	if err := s.Store.DeleteNote(ctx, noteId); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return notFoundError("note " + noteId)
		}
		return err
	}

	go func() {
		msg := CleanupMessage{NoteId: note.Id}
		msgBytes, err := json.Marshal(msg)
		if err != nil {
			return
		}
		if err := s.MQ.Send(context.Background(), string(msgBytes)); err != nil {
			log.Printf("Failed to enqueue note cleanup for %s: %v", note.Id, err)
		}
	}()

	return nil
}

type SearchParams struct {
	Query      string
	Tags       []string
	PinnedOnly bool
	Offset     int
	Limit      int
}

const defaultSearchLimit = 50

// ListNotes returns the notes visible to user (owned plus granted, no
// duplicates) that match the free-text query and carry all requested tags.
//
// Matching policy: the query matches case-insensitively as a substring of
// the title or the content; the tag filter requires the note's tag set to be
// a superset of the requested tags. An empty query and empty tag set match
// everything visible.
//
// Ordering: pinned notes first, then most recently updated, note id
// descending as tiebreaker, so pagination is deterministic.
func (s *Service) ListNotes(ctx context.Context, user models.User, params SearchParams) ([]models.Note, error) {
	if params.Limit <= 0 {
		params.Limit = defaultSearchLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	visible, err := s.visibleNotes(ctx, user)
	if err != nil {
		return nil, err
	}

	matched := filterNotes(visible, params.Query, params.Tags)
	if params.PinnedOnly {
		matched = pinnedOnly(matched)
	}
	sortNotes(matched)

	return paginate(matched, params.Offset, params.Limit), nil
}

// SharedWithMe returns only the notes granted to user by others.
func (s *Service) SharedWithMe(ctx context.Context, user models.User, offset int, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}

	grants, err := s.Store.GetGrantsForGrantee(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	noteIds := make([]string, 0, len(grants))
	for _, grant := range grants {
		noteIds = append(noteIds, grant.NoteId)
	}

	notes, err := s.Store.GetNotesByIds(ctx, noteIds)
	if err != nil {
		return nil, err
	}

	sortNotes(notes)
	return paginate(notes, offset, limit), nil
}

// visibleNotes is the union of notes owned by user and notes with an active
// grant naming user, deduplicated by id.
func (s *Service) visibleNotes(ctx context.Context, user models.User) ([]models.Note, error) {
	owned, err := s.Store.GetOwnedNotes(ctx, user.Id)
	if err != nil {
		return nil, fmt.Errorf("list owned notes failed: %w", err)
	}

	grants, err := s.Store.GetGrantsForGrantee(ctx, user.Id)
	if err != nil {
		return nil, fmt.Errorf("list grants failed: %w", err)
	}

	seen := make(map[string]struct{}, len(owned))
	for _, note := range owned {
		seen[note.Id] = struct{}{}
	}

	grantedIds := make([]string, 0, len(grants))
	for _, grant := range grants {
		if _, ok := seen[grant.NoteId]; ok {
			continue
		}
		seen[grant.NoteId] = struct{}{}
		grantedIds = append(grantedIds, grant.NoteId)
	}

	granted, err := s.Store.GetNotesByIds(ctx, grantedIds)
	if err != nil {
		return nil, fmt.Errorf("fetch granted notes failed: %w", err)
	}

	return append(owned, granted...), nil
}

func filterNotes(notes []models.Note, query string, tags []string) []models.Note {
	query = strings.ToLower(query)

	matched := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if query != "" &&
			!strings.Contains(strings.ToLower(note.Title), query) &&
			!strings.Contains(strings.ToLower(note.Content), query) {
			continue
		}
		if !hasAllTags(note, tags) {
			continue
		}
		matched = append(matched, note)
	}

	return matched
}

func hasAllTags(note models.Note, tags []string) bool {
	if len(tags) == 0 {
		return true
	}

	noteTags := make(map[string]struct{}, len(note.Tags))
	for _, tag := range note.Tags {
		noteTags[tag] = struct{}{}
	}
	for _, tag := range tags {
		if _, ok := noteTags[tag]; !ok {
			return false
		}
	}

	return true
}

func pinnedOnly(notes []models.Note) []models.Note {
	pinned := make([]models.Note, 0, len(notes))
	for _, note := range notes {
		if note.Pinned {
			pinned = append(pinned, note)
		}
	}
	return pinned
}

func sortNotes(notes []models.Note) {
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Pinned != notes[j].Pinned {
			return notes[i].Pinned
		}
		if notes[i].Updated != notes[j].Updated {
			return notes[i].Updated > notes[j].Updated
		}
		return notes[i].Id > notes[j].Id
	})
}

func paginate(notes []models.Note, offset int, limit int) []models.Note {
	if offset >= len(notes) {
		return []models.Note{}
	}
	end := offset + limit
	if end > len(notes) {
		end = len(notes)
	}
	return notes[offset:end]
}
