package posts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/JaimeStill/school-feed/internal/classes"
	"github.com/JaimeStill/school-feed/internal/media"
	"github.com/JaimeStill/school-feed/internal/users"
	"github.com/JaimeStill/school-feed/pkg/cache"
	"github.com/JaimeStill/school-feed/pkg/events"
	"github.com/JaimeStill/school-feed/pkg/pagination"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

const feedGenerationKey = "feed:generation"

const (
	EventCreated = "post.created"
	EventUpdated = "post.updated"
	EventDeleted = "post.deleted"
)

type system struct {
	store   Store
	users   users.System
	classes classes.System
	media   media.System
	cache   cache.System
	events  events.System
	cfg     Config
	logger  *slog.Logger
}

// New creates the posts system.
func New(
	store Store,
	usersSys users.System,
	classesSys classes.System,
	mediaSys media.System,
	cacheSys cache.System,
	eventsSys events.System,
	cfg Config,
	logger *slog.Logger,
) System {
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}
	return &system{
		store:   store,
		users:   usersSys,
		classes: classesSys,
		media:   mediaSys,
		cache:   cacheSys,
		events:  eventsSys,
		cfg:     cfg,
		logger:  logger.With("system", "posts"),
	}
}

func (s *system) Create(ctx context.Context, cmd CreateCommand) (*Post, error) {
	return s.create(ctx, cmd, discardSink{})
}

func (s *system) CreateWithProgress(ctx context.Context, cmd CreateCommand, sink ProgressSink) (*Post, error) {
	defer sink.Close()

	post, err := s.create(ctx, cmd, sink)
	if err != nil {
		sink.Send(ProgressEvent{Error: progressMessage(err)})
		return nil, err
	}

	sink.Send(ProgressEvent{Status: StatusComplete, Type: PhasePost, Data: post})
	return post, nil
}

func (s *system) create(ctx context.Context, cmd CreateCommand, sink ProgressSink) (*Post, error) {
	if err := cmd.ContentType.Validate(); err != nil {
		return nil, err
	}

	rec := Record{
		PostedBy:    cmd.PostedBy,
		Heading:     cmd.Heading,
		Body:        cmd.Body,
		ContentType: cmd.ContentType,
		SchoolID:    cmd.SchoolID,
		Reactions:   cmd.Reactions,
	}

	if cmd.ContentType == ContentAnnouncement {
		class, err := s.memberClass(ctx, cmd)
		if err != nil {
			return nil, err
		}
		rec.ClassID = &class.ID
		rec.Grade = &class.Grade
	}

	images, err := s.uploadImages(ctx, cmd.Images, sink)
	if err != nil {
		return nil, err
	}
	rec.ContentPictures = images

	documents, err := s.uploadDocuments(ctx, cmd.Documents, sink)
	if err != nil {
		return nil, err
	}
	rec.Documents = documents

	post, err := s.store.Insert(ctx, rec)
	if err != nil {
		return nil, persistenceFailure("Failed to save post", err)
	}

	if post.IsAnnouncement() {
		if err := s.classes.LinkAnnouncement(ctx, *rec.ClassID, post.ID); err != nil {
			s.compensate(ctx, post.ID)
			return nil, persistenceFailure("failed to link announcement to class", err)
		}
	}

	s.logger.Info("post created", "id", post.ID, "content_type", post.ContentType, "images", len(images), "documents", len(documents))
	s.changed(ctx, EventCreated, post)
	return post, nil
}

// memberClass resolves the class an announcement targets and verifies the poster belongs to it.
func (s *system) memberClass(ctx context.Context, cmd CreateCommand) (*classes.Class, error) {
	class, err := s.classes.Match(ctx, classes.MatchQuery{
		Grade:     cmd.GradeName,
		ClassName: cmd.ClassName,
		SchoolID:  cmd.SchoolID,
	})
	if errors.Is(err, classes.ErrNotFound) {
		return nil, errClassNotFound
	}
	if err != nil {
		return nil, persistenceFailure("failed to find class", err)
	}

	user, err := s.findUser(ctx, cmd.PostedBy)
	if err != nil {
		return nil, err
	}
	if !user.InClass(class.ID) {
		return nil, errNotClassMember
	}
	return class, nil
}

// compensate removes a saved post whose class link failed.
func (s *system) compensate(ctx context.Context, id uuid.UUID) {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("compensation failed, orphaned post remains", "id", id, "error", err)
		return
	}
	s.logger.Warn("post removed after class link failure", "id", id)
}

func (s *system) uploadImages(ctx context.Context, files []media.File, sink ProgressSink) ([]string, error) {
	urls := make([]string, 0, len(files))
	if len(files) == 0 {
		return urls, nil
	}

	total := len(files)
	sink.Send(ProgressEvent{Status: StatusUploading, Type: PhaseImages, Total: total})

	for i, f := range files {
		url, err := s.media.UploadImage(ctx, f, s.cfg.ImagesBucket)
		if err != nil {
			return nil, uploadFailure("Image", err)
		}
		urls = append(urls, url)
		sink.Send(ProgressEvent{Status: StatusProgress, Type: PhaseImage, Current: i + 1, Total: total})
	}

	sink.Send(ProgressEvent{Status: StatusComplete, Type: PhaseImages})
	return urls, nil
}

func (s *system) uploadDocuments(ctx context.Context, files []media.File, sink ProgressSink) ([]string, error) {
	urls := make([]string, 0, len(files))
	if len(files) == 0 {
		return urls, nil
	}

	total := len(files)
	sink.Send(ProgressEvent{Status: StatusUploading, Type: PhaseDocuments, Total: total})

	for i, f := range files {
		current := i + 1
		onProgress := func(percent int) {
			sink.Send(ProgressEvent{
				Status:   StatusProgress,
				Type:     PhaseDocument,
				Current:  current,
				Total:    total,
				Progress: &percent,
			})
		}

		url, err := s.media.UploadDocument(ctx, f, s.cfg.DocumentsBucket, onProgress)
		if err != nil {
			return nil, uploadFailure("Document", err)
		}
		urls = append(urls, url)
		sink.Send(ProgressEvent{Status: StatusComplete, Type: PhaseDocument, Current: current, Total: total})
	}

	sink.Send(ProgressEvent{Status: StatusComplete, Type: PhaseDocuments})
	return urls, nil
}

func (s *system) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Post, error) {
	post, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.PostedBy.ID != cmd.EditorID {
		return nil, errNotPoster
	}

	rec := Record{
		Heading:         post.Heading,
		Body:            post.Body,
		ContentType:     post.ContentType,
		Reactions:       post.Reactions,
		ContentPictures: post.ContentPictures,
		Documents:       post.Documents,
	}

	if cmd.Heading != nil {
		rec.Heading = *cmd.Heading
	}
	if cmd.Body != nil {
		rec.Body = *cmd.Body
	}
	if cmd.Reactions != nil {
		rec.Reactions = *cmd.Reactions
	}
	if cmd.ContentType != nil {
		if err := cmd.ContentType.Validate(); err != nil {
			return nil, err
		}
		if *cmd.ContentType != post.ContentType {
			return nil, newFailure(ErrValidation, "content type cannot change from %s to %s", post.ContentType, *cmd.ContentType)
		}
	}

	if len(cmd.Images) > 0 {
		if err := s.deleteImages(ctx, post.ContentPictures); err != nil {
			return nil, err
		}
		if rec.ContentPictures, err = s.uploadImages(ctx, cmd.Images, discardSink{}); err != nil {
			return nil, err
		}
	}

	if len(cmd.Documents) > 0 {
		if err := s.deleteDocuments(ctx, post.Documents); err != nil {
			return nil, err
		}
		if rec.Documents, err = s.uploadDocuments(ctx, cmd.Documents, discardSink{}); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Replace(ctx, id, rec)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, persistenceFailure("failed to update post", err)
	}

	s.logger.Info("post updated", "id", id)
	s.changed(ctx, EventUpdated, updated)
	return updated, nil
}

func (s *system) Delete(ctx context.Context, id, editorID uuid.UUID) (*Post, error) {
	post, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.PostedBy.ID != editorID {
		return nil, errNotPoster
	}

	if err := s.deleteImages(ctx, post.ContentPictures); err != nil {
		return nil, err
	}
	if err := s.deleteDocuments(ctx, post.Documents); err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, errPostNotFound
		}
		return nil, persistenceFailure("failed to delete post", err)
	}

	if post.IsAnnouncement() && post.ClassID != nil {
		err := s.classes.UnlinkAnnouncement(ctx, *post.ClassID, id)
		if err != nil && !errors.Is(err, classes.ErrNotFound) {
			return nil, persistenceFailure("failed to unlink announcement from class", err)
		}
	}

	s.logger.Info("post deleted", "id", id)
	s.changed(ctx, EventDeleted, post)
	return post, nil
}

func (s *system) deleteImages(ctx context.Context, urls []string) error {
	for _, url := range urls {
		if err := s.media.DeleteImage(ctx, url, s.cfg.ImagesBucket); err != nil {
			return mediaDeleteFailure("image", err)
		}
	}
	return nil
}

func (s *system) deleteDocuments(ctx context.Context, urls []string) error {
	for _, url := range urls {
		if err := s.media.DeleteDocument(ctx, url, s.cfg.DocumentsBucket); err != nil {
			return mediaDeleteFailure("document", err)
		}
	}
	return nil
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.store.Find(ctx, id)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, errPostNotFound
	}
	if err != nil {
		return nil, persistenceFailure("failed to fetch post", err)
	}
	return post, nil
}

func (s *system) Feed(ctx context.Context, userID uuid.UUID, page int) (*pagination.PageResult[Post], error) {
	if page < 1 {
		page = 1
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, cacheable := s.feedKey(ctx, user, page)
	if cacheable {
		if result, ok := s.cachedFeed(ctx, key); ok {
			return result, nil
		}
	}

	posts, total, err := s.store.Feed(ctx, user.Schools, page, s.cfg.PageSize)
	if err != nil {
		return nil, persistenceFailure("failed to fetch feed", err)
	}

	result := pagination.NewPageResult(posts, total, page, s.cfg.PageSize)
	if cacheable {
		s.cacheFeed(ctx, key, &result)
	}
	return &result, nil
}

func (s *system) Announcements(ctx context.Context, userID uuid.UUID, page int) (*AnnouncementPage, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Classes) == 0 {
		return nil, errNoClasses
	}

	ordered, err := s.classes.NewestFirst(ctx, user.Classes)
	if err != nil {
		return nil, persistenceFailure("failed to fetch classes", err)
	}

	lists := make([][]Post, 0, len(ordered))
	for _, classID := range ordered {
		posts, err := s.store.ClassAnnouncements(ctx, classID)
		if err != nil {
			return nil, persistenceFailure("failed to fetch announcements", err)
		}
		lists = append(lists, posts)
	}

	result := FlattenAnnouncements(lists, page, s.cfg.PageSize)
	return &result, nil
}

func (s *system) Filter(ctx context.Context, filters Filters) ([]Post, error) {
	posts, err := s.store.Filter(ctx, filters)
	if err != nil {
		return nil, persistenceFailure("failed to filter posts", err)
	}
	return posts, nil
}

func (s *system) findUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.users.Find(ctx, id)
	if errors.Is(err, users.ErrNotFound) {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, persistenceFailure("failed to fetch user", err)
	}
	return user, nil
}

// feedKey builds the cache key for a feed page under the current generation.
// The key carries a digest of the user's schools so a membership change misses.
// A generation lookup failure disables caching for the request.
func (s *system) feedKey(ctx context.Context, user *users.User, page int) (string, bool) {
	gen, err := s.cache.Counter(ctx, feedGenerationKey)
	if err != nil {
		s.logger.Warn("feed cache unavailable", "error", err)
		return "", false
	}
	return fmt.Sprintf("feed:%d:%s:%016x:%d", gen, user.ID, schoolsDigest(user.Schools), page), true
}

// schoolsDigest hashes the school set independent of its order.
func schoolsDigest(schools []uuid.UUID) uint64 {
	sorted := slices.Clone(schools)
	slices.SortFunc(sorted, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	d := xxhash.New()
	for _, id := range sorted {
		d.Write(id[:])
	}
	return d.Sum64()
}

func (s *system) cachedFeed(ctx context.Context, key string) (*pagination.PageResult[Post], bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("feed cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var result pagination.PageResult[Post]
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("feed cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (s *system) cacheFeed(ctx context.Context, key string, result *pagination.PageResult[Post]) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("feed cache encode failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("feed cache write failed", "key", key, "error", err)
	}
}

// changed invalidates cached feed pages and publishes name for post.
// Failures are logged and never fail the request.
func (s *system) changed(ctx context.Context, name string, post *Post) {
	if _, err := s.cache.Incr(ctx, feedGenerationKey); err != nil {
		s.logger.Warn("feed cache invalidation failed", "error", err)
	}
	if err := s.events.Publish(ctx, name, newEvent(post)); err != nil {
		s.logger.Warn("event publish failed", "event", name, "post_id", post.ID, "error", err)
	}
}
