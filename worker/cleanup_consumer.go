package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/C0de-cloud/Notes-API/mq"
	"github.com/C0de-cloud/Notes-API/service"
	"github.com/C0de-cloud/Notes-API/store"
)

type CleanupConsumer struct {
	cleanupQueue mq.MessageQueue
	notesStore   store.NotesStore
}

func NewCleanupConsumer(cleanupQueue mq.MessageQueue, notesStore store.NotesStore) *CleanupConsumer {
	return &CleanupConsumer{
		cleanupQueue: cleanupQueue,
		notesStore:   notesStore,
	}
}

// Allow up to 5 minutes for the throttled cascade over grants and memberships
const visibilityTimeout = 300

func (consumer CleanupConsumer) Run(shutdownCtx context.Context) {
	for {
		msg, err := consumer.cleanupQueue.Receive(shutdownCtx, visibilityTimeout)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Printf("cleanupConsumer receive error: %v", err)
			continue
		}

		if msg == nil {
			continue
		}

		var cleanupMsg service.CleanupMessage
		if err := json.Unmarshal([]byte(msg.Body), &cleanupMsg); err != nil {
			continue
		}

		if err := consumer.handle(cleanupMsg); err != nil {
			log.Printf("cleanupConsumer cleanup error: %v", err)
			continue
		}

		if err := consumer.cleanupQueue.Delete(context.Background(), msg); err != nil {
			log.Printf("cleanupConsumer delete error: %v", err)
			continue
		}
	}
}

func (consumer CleanupConsumer) handle(msg service.CleanupMessage) error {
	// timeout should be a little less than queue visibility timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(visibilityTimeout-1)*time.Second)
	defer cancel()

	if msg.UserId != "" {
		return consumer.cleanupUser(ctx, msg.UserId)
	}
	if msg.NoteId != "" {
		return consumer.cleanupNote(ctx, msg.NoteId)
	}
	return nil
}

// cleanupNote removes everything that referenced a deleted note: share
// grants and collection memberships. Both deletes are idempotent, so a
// redelivered message just finds nothing left to remove.
func (consumer CleanupConsumer) cleanupNote(ctx context.Context, noteId string) error {
	if err := consumer.notesStore.DeleteGrantsForNote(ctx, noteId); err != nil {
		return err
	}
	return consumer.notesStore.DeleteMembershipsForNote(ctx, noteId)
}

// cleanupUser cascades a full account delete: the user's notes together
// with their grants and memberships, grants where the user was the
// grantee, and the user's collections. The profile item is already gone
// by the time this runs.
func (consumer CleanupConsumer) cleanupUser(ctx context.Context, userId string) error {
	notes, err := consumer.notesStore.GetOwnedNotes(ctx, userId)
	if err != nil {
		return err
	}
	for _, note := range notes {
		if err := consumer.cleanupNote(ctx, note.Id); err != nil {
			return err
		}
		if err := consumer.notesStore.DeleteNote(ctx, note.Id); err != nil && !errors.Is(err, store.ErrItemNotFound) {
			return err
		}
	}

	grants, err := consumer.notesStore.GetGrantsForGrantee(ctx, userId)
	if err != nil {
		return err
	}
	for _, grant := range grants {
		if err := consumer.notesStore.DeleteGrant(ctx, grant.NoteId, userId); err != nil {
			return err
		}
	}

	collections, err := consumer.notesStore.GetOwnedCollections(ctx, userId)
	if err != nil {
		return err
	}
	for _, collection := range collections {
		if err := consumer.notesStore.DeleteCollection(ctx, collection.Id); err != nil && !errors.Is(err, store.ErrItemNotFound) {
			return err
		}
	}

	return nil
}
