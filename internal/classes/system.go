package classes

import (
	"context"

	"github.com/google/uuid"
)

// System defines class lookup and announcement list maintenance.
type System interface {
	Find(ctx context.Context, id uuid.UUID) (*Class, error)
	Match(ctx context.Context, q MatchQuery) (*Class, error)
	Create(ctx context.Context, cmd CreateCommand) (*Class, error)

	// LinkAnnouncement appends postID to the class's announcements.
	LinkAnnouncement(ctx context.Context, classID, postID uuid.UUID) error

	// UnlinkAnnouncement removes every occurrence of postID. Removing an absent id is not an error.
	UnlinkAnnouncement(ctx context.Context, classID, postID uuid.UUID) error

	// NewestFirst returns the ids that name existing classes, most recently created first.
	NewestFirst(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}
