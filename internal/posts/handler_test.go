package posts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/school-feed/internal/posts"
	"github.com/JaimeStill/school-feed/pkg/auth"
	"github.com/JaimeStill/school-feed/pkg/routes"
	"github.com/google/uuid"
)

type envelope struct {
	Con  bool            `json:"con"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type formFile struct {
	field string
	name  string
	data  string
}

func newMux(sys posts.System) *http.ServeMux {
	h := posts.NewHandler(sys, discardLogger(), 1<<20)
	mux := http.NewServeMux()
	routes.Register(mux, "/api", h.Routes())
	return mux
}

func serve(mux http.Handler, r *http.Request, userID uuid.UUID) *httptest.ResponseRecorder {
	if userID != uuid.Nil {
		r = r.WithContext(auth.WithUserID(r.Context(), userID))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write([]byte(f.data))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	r := httptest.NewRequest(method, target, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

// readEvents splits a recorded event stream into its decoded frames.
func readEvents(t *testing.T, w *httptest.ResponseRecorder) []posts.ProgressEvent {
	t.Helper()

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("got content type %q", got)
	}

	body := w.Body.String()
	if !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("stream should end with a blank line: %q", body)
	}

	var events []posts.ProgressEvent
	for _, frame := range strings.Split(strings.TrimSuffix(body, "\n\n"), "\n\n") {
		payload, ok := strings.CutPrefix(frame, "data: ")
		if !ok {
			t.Fatalf("frame missing data prefix: %q", frame)
		}
		var e posts.ProgressEvent
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			t.Fatalf("decode frame %q: %v", payload, err)
		}
		events = append(events, e)
	}
	return events
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHandler_Create(t *testing.T) {
	fx := newFixture()
	mux := newMux(fx.sys)

	r := multipartRequest(t, http.MethodPost, "/api/posts", map[string]string{
		"heading":     "Sports day",
		"body":        "Bring water",
		"contentType": "feed",
		"schoolId":    fx.school.String(),
		"reactions":   "3",
	}, formFile{"contentPictures", "track.png", "png-bytes"})

	w := serve(mux, r, fx.teacher.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	if !env.Con || env.Msg != "Post created successfully" {
		t.Errorf("got envelope %+v", env)
	}

	var post posts.Post
	if err := json.Unmarshal(env.Data, &post); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if post.PostedBy.ID != fx.teacher.ID {
		t.Errorf("got poster %s, want %s", post.PostedBy.ID, fx.teacher.ID)
	}
	if post.Reactions != 3 {
		t.Errorf("got reactions %d, want 3", post.Reactions)
	}
	if len(post.ContentPictures) != 1 {
		t.Errorf("got pictures %v", post.ContentPictures)
	}
}

func TestHandler_CreateErrors(t *testing.T) {
	fx := newFixture()
	mux := newMux(fx.sys)

	tests := []struct {
		name   string
		fields map[string]string
		user   uuid.UUID
		status int
	}{
		{
			name:   "no caller",
			fields: map[string]string{"contentType": "feed", "schoolId": fx.school.String()},
			status: http.StatusUnauthorized,
		},
		{
			name:   "invalid school id",
			fields: map[string]string{"contentType": "feed", "schoolId": "nope"},
			user:   fx.teacher.ID,
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid reactions",
			fields: map[string]string{"contentType": "feed", "schoolId": fx.school.String(), "reactions": "many"},
			user:   fx.teacher.ID,
			status: http.StatusBadRequest,
		},
		{
			name: "announcement to another class",
			fields: map[string]string{
				"contentType": "announcement",
				"schoolId":    fx.school.String(),
				"gradeName":   fx.class2.Grade,
				"className":   fx.class2.ClassName,
			},
			user:   fx.teacher.ID,
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(mux, multipartRequest(t, http.MethodPost, "/api/posts", tt.fields), tt.user)
			if w.Code != tt.status {
				t.Fatalf("got status %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			if env := decodeEnvelope(t, w); env.Con {
				t.Error("error envelope should have con=false")
			}
		})
	}
}

func TestHandler_CreateWithProgress(t *testing.T) {
	fx := newFixture()
	mux := newMux(fx.sys)

	r := multipartRequest(t, http.MethodPost, "/api/posts/progress", map[string]string{
		"heading":     "Reading list",
		"contentType": "feed",
		"schoolId":    fx.school.String(),
	},
		formFile{"documents", "list.pdf", "%PDF-1.4"},
		formFile{"documents", "extra.pdf", "%PDF-1.4"},
	)

	w := serve(mux, r, fx.teacher.ID)
	events := readEvents(t, w)

	if len(events) == 0 {
		t.Fatal("no events streamed")
	}
	if events[0].Status != posts.StatusUploading || events[0].Type != posts.PhaseDocuments || events[0].Total != 2 {
		t.Errorf("got first event %+v", events[0])
	}

	last := events[len(events)-1]
	if last.Status != posts.StatusComplete || last.Type != posts.PhasePost || last.Data == nil {
		t.Errorf("got last event %+v", last)
	}
	if last.Data != nil && len(last.Data.Documents) != 2 {
		t.Errorf("got documents %v", last.Data.Documents)
	}
}

func TestHandler_CreateWithProgressRejectedForm(t *testing.T) {
	fx := newFixture()
	mux := newMux(fx.sys)

	tests := []struct {
		name   string
		fields map[string]string
		user   uuid.UUID
		want   string
	}{
		{
			name:   "malformed school id",
			fields: map[string]string{"heading": "x", "contentType": "feed", "schoolId": "nope"},
			user:   fx.teacher.ID,
			want:   "schoolId",
		},
		{
			name:   "missing caller",
			fields: map[string]string{"heading": "x", "contentType": "feed", "schoolId": fx.school.String()},
			want:   auth.ErrUnauthorized.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(mux, multipartRequest(t, http.MethodPost, "/api/posts/progress", tt.fields), tt.user)
			if w.Code != http.StatusOK {
				t.Fatalf("got status %d, want 200", w.Code)
			}

			events := readEvents(t, w)
			if len(events) != 1 {
				t.Fatalf("got %d events, want 1: %+v", len(events), events)
			}
			if !strings.Contains(events[0].Error, tt.want) {
				t.Errorf("got error %q, want it to mention %q", events[0].Error, tt.want)
			}
			if !events[0].Terminal() {
				t.Error("error event should be terminal")
			}
			if fx.store.inserts != 0 {
				t.Errorf("got %d inserts, want 0", fx.store.inserts)
			}
		})
	}
}

func TestHandler_CreateWithProgressUploadFailure(t *testing.T) {
	fx := newFixture()
	fx.media.fail["broken.png"] = errUpstream
	mux := newMux(fx.sys)

	r := multipartRequest(t, http.MethodPost, "/api/posts/progress", map[string]string{
		"heading":     "Gallery",
		"contentType": "feed",
		"schoolId":    fx.school.String(),
	}, formFile{"contentPictures", "broken.png", "png-bytes"})

	events := readEvents(t, serve(mux, r, fx.teacher.ID))
	last := events[len(events)-1]
	if want := "Image upload failed: " + errUpstream.Error(); last.Error != want {
		t.Errorf("got error %q, want %q", last.Error, want)
	}
}

func TestHandler_Feed(t *testing.T) {
	fx := newFixture()
	mustCreate(t, fx, fx.feedCommand(fx.teacher.ID))
	mux := newMux(fx.sys)

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/posts/feeds?page=1", nil), fx.teacher.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var page struct {
		Items      []posts.Post `json:"items"`
		TotalItems int          `json:"totalItems"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalItems != 1 || len(page.Items) != 1 {
		t.Errorf("got page %+v", page)
	}
}

func TestHandler_Announcements(t *testing.T) {
	fx := newFixture()
	mustCreate(t, fx, fx.announcementCommand(fx.teacher.ID, fx.class1))
	mux := newMux(fx.sys)

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/posts/announcements", nil), fx.teacher.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	if env.Msg != "Announcements fetched successfully" {
		t.Errorf("got message %q", env.Msg)
	}

	var page posts.AnnouncementPage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.TotalAnnouncements != 1 || page.CurrentPage != 1 {
		t.Errorf("got page %+v", page)
	}
}

func TestHandler_Filter(t *testing.T) {
	fx := newFixture()
	mux := newMux(fx.sys)

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/posts/filter?contentType=memo", nil), fx.teacher.ID)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}

	w = serve(mux, httptest.NewRequest(http.MethodGet, "/api/posts/filter?contentType=feed", nil), fx.teacher.ID)
	if w.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", w.Code)
	}
}

func TestHandler_FindAndDelete(t *testing.T) {
	fx := newFixture()
	post := mustCreate(t, fx, fx.feedCommand(fx.teacher.ID))
	mux := newMux(fx.sys)

	tests := []struct {
		name   string
		method string
		target string
		user   uuid.UUID
		status int
	}{
		{"find", http.MethodGet, "/api/posts/" + post.ID.String(), fx.other.ID, http.StatusOK},
		{"find malformed id", http.MethodGet, "/api/posts/abc", fx.other.ID, http.StatusBadRequest},
		{"find unknown", http.MethodGet, "/api/posts/" + uuid.NewString(), fx.other.ID, http.StatusNotFound},
		{"delete by someone else", http.MethodDelete, "/api/posts/" + post.ID.String(), fx.other.ID, http.StatusForbidden},
		{"delete by poster", http.MethodDelete, "/api/posts/" + post.ID.String(), fx.teacher.ID, http.StatusOK},
		{"find deleted", http.MethodGet, "/api/posts/" + post.ID.String(), fx.teacher.ID, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(mux, httptest.NewRequest(tt.method, tt.target, nil), tt.user)
			if w.Code != tt.status {
				t.Errorf("got status %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestHandler_DeleteReturnsPost(t *testing.T) {
	fx := newFixture()
	post := mustCreate(t, fx, fx.feedCommand(fx.teacher.ID))
	mux := newMux(fx.sys)

	w := serve(mux, httptest.NewRequest(http.MethodDelete, "/api/posts/"+post.ID.String(), nil), fx.teacher.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	if env.Msg != "Post deleted successfully" {
		t.Errorf("got message %q", env.Msg)
	}

	var deleted posts.Post
	if err := json.Unmarshal(env.Data, &deleted); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if deleted.ID != post.ID || deleted.Heading != post.Heading {
		t.Errorf("got %+v, want post %s", deleted, post.ID)
	}
}

func TestHandler_Update(t *testing.T) {
	fx := newFixture()
	post := mustCreate(t, fx, fx.feedCommand(fx.teacher.ID))
	mux := newMux(fx.sys)

	r := multipartRequest(t, http.MethodPut, "/api/posts/"+post.ID.String(), map[string]string{"heading": "Updated"})
	w := serve(mux, r, fx.teacher.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d: %s", w.Code, w.Body.String())
	}

	var updated posts.Post
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &updated); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	if updated.Heading != "Updated" || updated.Body != post.Body {
		t.Errorf("got %q / %q", updated.Heading, updated.Body)
	}
}

type failingSystem struct {
	posts.System
}

func (failingSystem) Find(context.Context, uuid.UUID) (*posts.Post, error) {
	return nil, errors.New("unexpected")
}

func TestHandler_UnclassifiedError(t *testing.T) {
	mux := newMux(failingSystem{})

	w := serve(mux, httptest.NewRequest(http.MethodGet, "/api/posts/"+uuid.NewString(), nil), uuid.New())
	if w.Code != 505 {
		t.Errorf("got status %d, want 505", w.Code)
	}
}
