package service

import (
	"context"
	"sort"

	"github.com/C0de-cloud/Notes-API/models"
)

// ListTags computes the derived tag view: the distinct tag strings across
// the user's own notes with per-tag note counts, aggregated at read time.
// Tags have no storage of their own, so the view can never drift from the
// notes it is derived from.
func (s *Service) ListTags(ctx context.Context, user models.User) ([]models.TagCount, error) {
	notes, err := s.Store.GetOwnedNotes(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, note := range notes {
		for _, tag := range note.Tags {
			counts[tag]++
		}
	}

	tags := make([]models.TagCount, 0, len(counts))
	for name, count := range counts {
		tags = append(tags, models.TagCount{Name: name, NoteCount: count})
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	return tags, nil
}

// NotesByTag returns the visible notes carrying the tag, in search order.
func (s *Service) NotesByTag(ctx context.Context, user models.User, tag string, offset int, limit int) ([]models.Note, error) {
	return s.ListNotes(ctx, user, SearchParams{
		Tags:   []string{tag},
		Offset: offset,
		Limit:  limit,
	})
}
