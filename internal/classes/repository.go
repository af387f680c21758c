package classes

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/school-feed/pkg/query"
	"github.com/JaimeStill/school-feed/pkg/repository"
	"github.com/google/uuid"
)

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a classes repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "classes"),
	}
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Class, error) {
	q, args := query.NewBuilder(projection, "ClassName").BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClass)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Match(ctx context.Context, mq MatchQuery) (*Class, error) {
	q, args := query.
		NewBuilder(projection, "CreatedAt").
		WhereEquals("Grade", mq.Grade).
		WhereEquals("ClassName", mq.ClassName).
		WhereEquals("SchoolID", mq.SchoolID).
		BuildPage(1, 1)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClass)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Class, error) {
	q := `
		INSERT INTO classes (grade, class_name, school_id)
		VALUES ($1, $2, $3)
		RETURNING id, grade, class_name, school_id, announcements, created_at`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Class, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.Grade, cmd.ClassName, cmd.SchoolID}, scanClass)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("class created", "id", c.ID, "grade", c.Grade, "class_name", c.ClassName)
	return &c, nil
}

func (r *repo) LinkAnnouncement(ctx context.Context, classID, postID uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE classes SET announcements = array_append(announcements, $1) WHERE id = $2",
		postID, classID,
	)
	if err != nil {
		return fmt.Errorf("link announcement %s: %w", postID, repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	r.logger.Info("announcement linked", "class_id", classID, "post_id", postID)
	return nil
}

func (r *repo) UnlinkAnnouncement(ctx context.Context, classID, postID uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		"UPDATE classes SET announcements = array_remove(announcements, $1) WHERE id = $2",
		postID, classID,
	)
	if err != nil {
		return fmt.Errorf("unlink announcement %s: %w", postID, repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	r.logger.Info("announcement unlinked", "class_id", classID, "post_id", postID)
	return nil
}

func (r *repo) NewestFirst(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM classes WHERE id = ANY($1) ORDER BY created_at DESC, id",
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("order classes: %w", err)
	}
	defer rows.Close()

	ordered := make([]uuid.UUID, 0, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan class id: %w", err)
		}
		ordered = append(ordered, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order classes: %w", err)
	}
	return ordered, nil
}
