package posts

import (
	"context"

	"github.com/JaimeStill/school-feed/pkg/pagination"
	"github.com/google/uuid"
)

// System defines post publishing and retrieval.
type System interface {
	Create(ctx context.Context, cmd CreateCommand) (*Post, error)

	// CreateWithProgress performs Create while reporting each step to sink.
	// The sink receives exactly one terminal event and is then closed.
	CreateWithProgress(ctx context.Context, cmd CreateCommand, sink ProgressSink) (*Post, error)

	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Post, error)
	Delete(ctx context.Context, id, editorID uuid.UUID) (*Post, error)
	Find(ctx context.Context, id uuid.UUID) (*Post, error)

	// Feed returns one page of feed posts from every school the user belongs to.
	Feed(ctx context.Context, userID uuid.UUID, page int) (*pagination.PageResult[Post], error)

	// Announcements returns one page of the user's class announcements,
	// flattened class by class in membership order.
	Announcements(ctx context.Context, userID uuid.UUID, page int) (*AnnouncementPage, error)

	Filter(ctx context.Context, filters Filters) ([]Post, error)
}

// Config contains the page size and media buckets used by the posts system.
type Config struct {
	PageSize        int
	ImagesBucket    string
	DocumentsBucket string
}

// FlattenAnnouncements concatenates per-class announcement lists in order
// and returns the requested page of the result.
func FlattenAnnouncements(lists [][]Post, page, pageSize int) AnnouncementPage {
	if page < 1 {
		page = 1
	}

	all := make([]Post, 0)
	for _, list := range lists {
		all = append(all, list...)
	}

	start, end := pagination.Window(len(all), page, pageSize)
	return AnnouncementPage{
		Announcements:      all[start:end],
		CurrentPage:        page,
		TotalPages:         pagination.TotalPages(len(all), pageSize),
		TotalAnnouncements: len(all),
	}
}
