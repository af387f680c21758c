// Package posts publishes school feed posts and class announcements,
// orchestrating media uploads and class announcement lists around each post.
package posts

import (
	"time"

	"github.com/JaimeStill/school-feed/internal/media"
	"github.com/google/uuid"
)

// ContentType distinguishes school-wide feed posts from class announcements.
type ContentType string

const (
	ContentFeed         ContentType = "feed"
	ContentAnnouncement ContentType = "announcement"
)

// Validate checks if the content type is known.
func (c ContentType) Validate() error {
	switch c {
	case ContentFeed, ContentAnnouncement:
		return nil
	default:
		return newFailure(ErrValidation, "invalid content type %q (must be feed or announcement)", c)
	}
}

// Poster carries the display fields of the user who published a post.
type Poster struct {
	ID             uuid.UUID `json:"id"`
	UserName       string    `json:"userName"`
	ProfilePicture string    `json:"profilePicture"`
	Roles          []string  `json:"roles"`
}

// Post is a feed entry or class announcement.
// ClassID and Grade are set only for announcements.
type Post struct {
	ID              uuid.UUID   `json:"id"`
	PostedBy        Poster      `json:"postedBy"`
	Heading         string      `json:"heading"`
	Body            string      `json:"body"`
	ContentPictures []string    `json:"contentPictures"`
	Documents       []string    `json:"documents"`
	ContentType     ContentType `json:"contentType"`
	ClassID         *uuid.UUID  `json:"classId"`
	Grade           *string     `json:"grade"`
	SchoolID        uuid.UUID   `json:"schoolId"`
	Reactions       int         `json:"reactions"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// IsAnnouncement reports whether the post is linked to a class.
func (p *Post) IsAnnouncement() bool {
	return p.ContentType == ContentAnnouncement
}

// CreateCommand contains the fields and attachments of a new post.
// GradeName and ClassName locate the class for announcements and are ignored for feed posts.
type CreateCommand struct {
	PostedBy    uuid.UUID
	Heading     string
	Body        string
	ContentType ContentType
	Reactions   int
	GradeName   string
	ClassName   string
	SchoolID    uuid.UUID
	Images      []media.File
	Documents   []media.File
}

// UpdateCommand merges the provided body fields into a post.
// Nil fields keep their current value. Non-empty Images or Documents
// replace the corresponding attachments.
type UpdateCommand struct {
	EditorID    uuid.UUID
	Heading     *string
	Body        *string
	ContentType *ContentType
	Reactions   *int
	Images      []media.File
	Documents   []media.File
}

// Record is the persisted form of a post before poster fields are joined.
type Record struct {
	PostedBy        uuid.UUID
	Heading         string
	Body            string
	ContentPictures []string
	Documents       []string
	ContentType     ContentType
	ClassID         *uuid.UUID
	Grade           *string
	SchoolID        uuid.UUID
	Reactions       int
}

// AnnouncementPage is one page of a user's flattened class announcements.
type AnnouncementPage struct {
	Announcements      []Post `json:"announcements"`
	CurrentPage        int    `json:"currentPage"`
	TotalPages         int    `json:"totalPages"`
	TotalAnnouncements int    `json:"totalAnnouncements"`
}

// Event is the payload published when a post changes.
type Event struct {
	PostID      uuid.UUID   `json:"postId"`
	PostedBy    uuid.UUID   `json:"postedBy"`
	ContentType ContentType `json:"contentType"`
	ClassID     *uuid.UUID  `json:"classId,omitempty"`
	SchoolID    uuid.UUID   `json:"schoolId"`
	Timestamp   time.Time   `json:"timestamp"`
}

func newEvent(p *Post) Event {
	return Event{
		PostID:      p.ID,
		PostedBy:    p.PostedBy.ID,
		ContentType: p.ContentType,
		ClassID:     p.ClassID,
		SchoolID:    p.SchoolID,
		Timestamp:   time.Now().UTC(),
	}
}
