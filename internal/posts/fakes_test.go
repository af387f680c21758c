package posts_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/JaimeStill/school-feed/internal/classes"
	"github.com/JaimeStill/school-feed/internal/media"
	"github.com/JaimeStill/school-feed/internal/posts"
	"github.com/JaimeStill/school-feed/internal/users"
	"github.com/JaimeStill/school-feed/pkg/cache"
	"github.com/JaimeStill/school-feed/pkg/lifecycle"
	"github.com/google/uuid"
)

type fakeUsers struct {
	byID map[uuid.UUID]*users.User
}

func (f *fakeUsers) Find(_ context.Context, id uuid.UUID) (*users.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, cmd users.CreateCommand) (*users.User, error) {
	u := &users.User{ID: uuid.New(), UserName: cmd.UserName, Roles: cmd.Roles, Schools: cmd.Schools, Classes: cmd.Classes}
	f.byID[u.ID] = u
	return u, nil
}

type fakeClasses struct {
	byID    map[uuid.UUID]*classes.Class
	linkErr error
}

func (f *fakeClasses) Find(_ context.Context, id uuid.UUID) (*classes.Class, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, classes.ErrNotFound
	}
	return c, nil
}

func (f *fakeClasses) Match(_ context.Context, q classes.MatchQuery) (*classes.Class, error) {
	for _, c := range f.byID {
		if c.Grade == q.Grade && c.ClassName == q.ClassName && c.SchoolID == q.SchoolID {
			return c, nil
		}
	}
	return nil, classes.ErrNotFound
}

func (f *fakeClasses) Create(_ context.Context, cmd classes.CreateCommand) (*classes.Class, error) {
	c := &classes.Class{ID: uuid.New(), Grade: cmd.Grade, ClassName: cmd.ClassName, SchoolID: cmd.SchoolID}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeClasses) LinkAnnouncement(_ context.Context, classID, postID uuid.UUID) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	c, ok := f.byID[classID]
	if !ok {
		return classes.ErrNotFound
	}
	c.Announcements = append(c.Announcements, postID)
	return nil
}

func (f *fakeClasses) NewestFirst(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	found := make([]*classes.Class, 0, len(ids))
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			found = append(found, c)
		}
	}
	slices.SortStableFunc(found, func(a, b *classes.Class) int { return b.CreatedAt.Compare(a.CreatedAt) })

	result := make([]uuid.UUID, len(found))
	for i, c := range found {
		result[i] = c.ID
	}
	return result, nil
}

func (f *fakeClasses) UnlinkAnnouncement(_ context.Context, classID, postID uuid.UUID) error {
	c, ok := f.byID[classID]
	if !ok {
		return classes.ErrNotFound
	}
	c.Announcements = slices.DeleteFunc(c.Announcements, func(id uuid.UUID) bool { return id == postID })
	return nil
}

type fakeStore struct {
	users   *fakeUsers
	classes *fakeClasses

	posts     map[uuid.UUID]*posts.Post
	order     []uuid.UUID
	inserts   int
	insertErr error
	feedCalls int
}

func (f *fakeStore) build(id uuid.UUID, rec posts.Record, created time.Time) *posts.Post {
	poster := posts.Poster{ID: rec.PostedBy}
	if u, ok := f.users.byID[rec.PostedBy]; ok {
		poster.UserName = u.UserName
		poster.Roles = u.Roles
	}
	return &posts.Post{
		ID:              id,
		PostedBy:        poster,
		Heading:         rec.Heading,
		Body:            rec.Body,
		ContentPictures: rec.ContentPictures,
		Documents:       rec.Documents,
		ContentType:     rec.ContentType,
		ClassID:         rec.ClassID,
		Grade:           rec.Grade,
		SchoolID:        rec.SchoolID,
		Reactions:       rec.Reactions,
		CreatedAt:       created,
		UpdatedAt:       time.Now(),
	}
}

func (f *fakeStore) Insert(_ context.Context, rec posts.Record) (*posts.Post, error) {
	f.inserts++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	p := f.build(uuid.New(), rec, time.Now())
	f.posts[p.ID] = p
	f.order = append(f.order, p.ID)
	return p, nil
}

func (f *fakeStore) Find(_ context.Context, id uuid.UUID) (*posts.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, posts.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Replace(_ context.Context, id uuid.UUID, rec posts.Record) (*posts.Post, error) {
	existing, ok := f.posts[id]
	if !ok {
		return nil, posts.ErrRecordNotFound
	}
	rec.PostedBy = existing.PostedBy.ID
	rec.SchoolID = existing.SchoolID
	rec.ClassID = existing.ClassID
	rec.Grade = existing.Grade
	p := f.build(id, rec, existing.CreatedAt)
	f.posts[id] = p
	return p, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.posts[id]; !ok {
		return posts.ErrRecordNotFound
	}
	delete(f.posts, id)
	f.order = slices.DeleteFunc(f.order, func(o uuid.UUID) bool { return o == id })
	return nil
}

func (f *fakeStore) Feed(_ context.Context, schoolIDs []uuid.UUID, page, pageSize int) ([]posts.Post, int, error) {
	f.feedCalls++

	var matched []posts.Post
	for i := len(f.order) - 1; i >= 0; i-- {
		p := f.posts[f.order[i]]
		if p.ContentType == posts.ContentFeed && slices.Contains(schoolIDs, p.SchoolID) {
			matched = append(matched, *p)
		}
	}

	start := min((page-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))
	return matched[start:end], len(matched), nil
}

func (f *fakeStore) ClassAnnouncements(_ context.Context, classID uuid.UUID) ([]posts.Post, error) {
	c, ok := f.classes.byID[classID]
	if !ok {
		return []posts.Post{}, nil
	}
	result := make([]posts.Post, 0, len(c.Announcements))
	for _, id := range c.Announcements {
		if p, ok := f.posts[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeStore) Filter(_ context.Context, filters posts.Filters) ([]posts.Post, error) {
	result := make([]posts.Post, 0)
	for i := len(f.order) - 1; i >= 0; i-- {
		p := f.posts[f.order[i]]
		if filters.ContentType != nil && p.ContentType != *filters.ContentType {
			continue
		}
		if filters.SchoolID != nil && p.SchoolID != *filters.SchoolID {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

// fakeMedia records every call and fails uploads of files named in fail.
type fakeMedia struct {
	fail     map[string]error
	uploads  []string
	deleted  []string
	progress bool
}

func (f *fakeMedia) upload(file media.File, bucket string) (string, error) {
	if err, ok := f.fail[file.Name]; ok {
		return "", err
	}
	f.uploads = append(f.uploads, file.Name)
	return fmt.Sprintf("https://media.test/%s/%s", bucket, file.Name), nil
}

func (f *fakeMedia) UploadImage(_ context.Context, file media.File, bucket string) (string, error) {
	return f.upload(file, bucket)
}

func (f *fakeMedia) UploadDocument(_ context.Context, file media.File, bucket string, onProgress media.ProgressFunc) (string, error) {
	url, err := f.upload(file, bucket)
	if err != nil {
		return "", err
	}
	if f.progress && onProgress != nil {
		onProgress(100)
	}
	return url, nil
}

func (f *fakeMedia) DeleteImage(_ context.Context, url, _ string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeMedia) DeleteDocument(_ context.Context, url, _ string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeCache struct {
	mu       sync.Mutex
	entries  map[string][]byte
	counters map[string]int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}, counters: map[string]int64{}}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *fakeCache) Counter(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key], nil
}

func (c *fakeCache) Start(*lifecycle.Coordinator) error { return nil }

type fakeEvents struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (e *fakeEvents) Publish(_ context.Context, name string, _ any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.published = append(e.published, name)
	return e.err
}

func (e *fakeEvents) Start(*lifecycle.Coordinator) error { return nil }

// fixture wires a posts system to in-memory collaborators with one school,
// two classes and a teacher registered in the first class only.
// class2 was created after class1.
type fixture struct {
	sys     posts.System
	store   *fakeStore
	users   *fakeUsers
	classes *fakeClasses
	media   *fakeMedia
	cache   *fakeCache
	events  *fakeEvents

	school  uuid.UUID
	class1  *classes.Class
	class2  *classes.Class
	teacher *users.User
	other   *users.User
}

func newFixture() *fixture {
	school := uuid.New()
	now := time.Now()
	class1 := &classes.Class{ID: uuid.New(), Grade: "Grade 1", ClassName: "A", SchoolID: school, CreatedAt: now.Add(-2 * time.Hour)}
	class2 := &classes.Class{ID: uuid.New(), Grade: "Grade 2", ClassName: "B", SchoolID: school, CreatedAt: now.Add(-time.Hour)}

	teacher := &users.User{ID: uuid.New(), UserName: "teacher", Roles: []string{"teacher"}, Schools: []uuid.UUID{school}, Classes: []uuid.UUID{class1.ID}}
	other := &users.User{ID: uuid.New(), UserName: "other", Schools: []uuid.UUID{school}}

	u := &fakeUsers{byID: map[uuid.UUID]*users.User{teacher.ID: teacher, other.ID: other}}
	c := &fakeClasses{byID: map[uuid.UUID]*classes.Class{class1.ID: class1, class2.ID: class2}}
	store := &fakeStore{users: u, classes: c, posts: map[uuid.UUID]*posts.Post{}}
	m := &fakeMedia{fail: map[string]error{}}
	ch := newFakeCache()
	ev := &fakeEvents{}

	sys := posts.New(store, u, c, m, ch, ev, posts.Config{
		PageSize:        10,
		ImagesBucket:    "posts",
		DocumentsBucket: "documents",
	}, discardLogger())

	return &fixture{
		sys:     sys,
		store:   store,
		users:   u,
		classes: c,
		media:   m,
		cache:   ch,
		events:  ev,
		school:  school,
		class1:  class1,
		class2:  class2,
		teacher: teacher,
		other:   other,
	}
}

func (fx *fixture) feedCommand(poster uuid.UUID) posts.CreateCommand {
	return posts.CreateCommand{
		PostedBy:    poster,
		Heading:     "Sports day",
		Body:        "Bring water",
		ContentType: posts.ContentFeed,
		SchoolID:    fx.school,
	}
}

func (fx *fixture) announcementCommand(poster uuid.UUID, class *classes.Class) posts.CreateCommand {
	return posts.CreateCommand{
		PostedBy:    poster,
		Heading:     "Homework",
		Body:        "Page 12",
		ContentType: posts.ContentAnnouncement,
		GradeName:   class.Grade,
		ClassName:   class.ClassName,
		SchoolID:    fx.school,
	}
}

var errUpstream = errors.New("upstream unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func files(names ...string) []media.File {
	result := make([]media.File, len(names))
	for i, n := range names {
		result[i] = media.File{Name: n, Data: []byte("data-" + n)}
	}
	return result
}
