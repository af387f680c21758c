package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/school-feed/pkg/query"
	"github.com/JaimeStill/school-feed/pkg/repository"
	"github.com/google/uuid"
)

// ErrRecordNotFound is returned by Store when no post matches.
var ErrRecordNotFound = errors.New("post record not found")

// Store persists posts. Returned posts always carry the poster's display fields.
type Store interface {
	Insert(ctx context.Context, rec Record) (*Post, error)
	Find(ctx context.Context, id uuid.UUID) (*Post, error)
	Replace(ctx context.Context, id uuid.UUID, rec Record) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Feed returns one page of feed posts for schoolIDs, newest first, with the total match count.
	Feed(ctx context.Context, schoolIDs []uuid.UUID, page, pageSize int) ([]Post, int, error)

	// ClassAnnouncements returns the posts linked to a class in the order they were linked.
	ClassAnnouncements(ctx context.Context, classID uuid.UUID) ([]Post, error)

	Filter(ctx context.Context, filters Filters) ([]Post, error)
}

type pgStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a PostgreSQL-backed Store.
func NewStore(db *sql.DB, logger *slog.Logger) Store {
	return &pgStore{
		db:     db,
		logger: logger.With("system", "posts.store"),
	}
}

// withPoster wraps a data-modifying statement that returns posts rows so the
// result is joined with poster fields like every other read.
func withPoster(modify string) string {
	return fmt.Sprintf(
		"WITH p AS (%s) SELECT %s FROM p JOIN public.users u ON u.id = p.posted_by",
		modify,
		projection.Columns(),
	)
}

func (s *pgStore) Insert(ctx context.Context, rec Record) (*Post, error) {
	q := withPoster(`
		INSERT INTO posts (posted_by, heading, body, content_pictures, documents, content_type, class_id, grade, school_id, reactions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *`)

	args := []any{
		rec.PostedBy,
		rec.Heading,
		rec.Body,
		nonNil(rec.ContentPictures),
		nonNil(rec.Documents),
		string(rec.ContentType),
		rec.ClassID,
		rec.Grade,
		rec.SchoolID,
		rec.Reactions,
	}

	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Post, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPost)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrRecordNotFound, err)
	}

	s.logger.Info("post inserted", "id", p.ID, "content_type", p.ContentType)
	return &p, nil
}

func (s *pgStore) Find(ctx context.Context, id uuid.UUID) (*Post, error) {
	q, args := query.NewSortedBuilder(projection, newestFirst).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, s.db, q, args, scanPost)
	if err != nil {
		return nil, repository.MapError(err, ErrRecordNotFound, err)
	}
	return &p, nil
}

func (s *pgStore) Replace(ctx context.Context, id uuid.UUID, rec Record) (*Post, error) {
	q := withPoster(`
		UPDATE posts
		SET heading = $1, body = $2, content_type = $3, reactions = $4,
			content_pictures = $5, documents = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING *`)

	args := []any{
		rec.Heading,
		rec.Body,
		string(rec.ContentType),
		rec.Reactions,
		nonNil(rec.ContentPictures),
		nonNil(rec.Documents),
		id,
	}

	p, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Post, error) {
		return repository.QueryOne(ctx, tx, q, args, scanPost)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrRecordNotFound, err)
	}

	s.logger.Info("post replaced", "id", p.ID)
	return &p, nil
}

func (s *pgStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		err := repository.ExecExpectOne(ctx, tx, "DELETE FROM posts WHERE id = $1", id)
		return struct{}{}, err
	})
	if err != nil {
		return repository.MapError(err, ErrRecordNotFound, err)
	}

	s.logger.Info("post deleted", "id", id)
	return nil
}

func (s *pgStore) Feed(ctx context.Context, schoolIDs []uuid.UUID, page, pageSize int) ([]Post, int, error) {
	qb := query.
		NewSortedBuilder(projection, newestFirst).
		WhereEquals("ContentType", string(ContentFeed)).
		WhereAny("SchoolID", nonNil(schoolIDs))

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feed: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page, pageSize)
	posts, err := repository.QueryMany(ctx, s.db, pageSQL, pageArgs, scanPost)
	if err != nil {
		return nil, 0, fmt.Errorf("query feed: %w", err)
	}
	return posts, total, nil
}

func (s *pgStore) ClassAnnouncements(ctx context.Context, classID uuid.UUID) ([]Post, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s JOIN public.classes c ON p.id = ANY(c.announcements) WHERE c.id = $1 ORDER BY array_position(c.announcements, p.id)",
		projection.Columns(),
		projection.Table(),
	)

	posts, err := repository.QueryMany(ctx, s.db, q, []any{classID}, scanPost)
	if err != nil {
		return nil, fmt.Errorf("query class %s announcements: %w", classID, err)
	}
	return posts, nil
}

func (s *pgStore) Filter(ctx context.Context, filters Filters) ([]Post, error) {
	qb := query.NewSortedBuilder(projection, newestFirst)
	filters.Apply(qb)

	q, args := qb.BuildAll()
	posts, err := repository.QueryMany(ctx, s.db, q, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("filter posts: %w", err)
	}
	return posts, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
