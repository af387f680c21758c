package posts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/JaimeStill/school-feed/internal/media"
	"github.com/JaimeStill/school-feed/pkg/auth"
	"github.com/JaimeStill/school-feed/pkg/handlers"
	"github.com/JaimeStill/school-feed/pkg/routes"
	"github.com/google/uuid"
)

const (
	fieldImages    = "contentPictures"
	fieldDocuments = "documents"
)

// Handler provides HTTP endpoints for post operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a post handler accepting multipart bodies up to maxUploadSize bytes.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "posts"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the post endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/posts",
		Tags:        []string{"Posts"},
		Description: "School feed posts and class announcements",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: Spec.Create},
			{Method: "POST", Pattern: "/progress", Handler: h.CreateWithProgress, OpenAPI: Spec.CreateWithProgress},
			{Method: "GET", Pattern: "/feeds", Handler: h.Feed, OpenAPI: Spec.Feed},
			{Method: "GET", Pattern: "/announcements", Handler: h.Announcements, OpenAPI: Spec.Announcements},
			{Method: "GET", Pattern: "/filter", Handler: h.Filter, OpenAPI: Spec.Filter},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: Spec.Find},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, OpenAPI: Spec.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: Spec.Delete},
		},
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.createCommand(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	post, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, "Post created successfully", post)
}

// CreateWithProgress streams creation progress as server-sent events.
// The stream opens before the form is read, so a rejected form arrives as a
// single error event. Creation continues after the client disconnects;
// undelivered events are dropped.
func (h *Handler) CreateWithProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	cmd, err := h.createCommand(r)
	if err != nil {
		h.logger.Warn("post creation rejected", "error", err)
		h.writeEvent(w, ProgressEvent{Error: err.Error()})
		return
	}

	stream := NewProgressStream(16)
	go func() {
		if _, err := h.sys.CreateWithProgress(context.WithoutCancel(r.Context()), cmd, stream); err != nil {
			h.logger.Error("post creation failed", "error", err)
		}
	}()

	events := stream.Events()
	for {
		select {
		case <-r.Context().Done():
			stream.Detach()
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			h.writeEvent(w, event)
		}
	}
}

func (h *Handler) writeEvent(w http.ResponseWriter, event ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal progress event", "error", err)
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", data)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	cmd, err := h.updateCommand(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	post, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, "Post updated successfully", post)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	caller, err := callerID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	post, err := h.sys.Delete(r.Context(), id, caller)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, "Post deleted successfully", post)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	post, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, "Posts fetched successfully", post)
}

func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Feed(r.Context(), caller, pageParam(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, "Posts fetched successfully", result)
}

func (h *Handler) Announcements(w http.ResponseWriter, r *http.Request) {
	caller, err := callerID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Announcements(r.Context(), caller, pageParam(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, "Announcements fetched successfully", result)
}

func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	posts, err := h.sys.Filter(r.Context(), filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondOK(w, http.StatusOK, "Posts fetched successfully", posts)
}

func (h *Handler) createCommand(r *http.Request) (CreateCommand, error) {
	caller, err := callerID(r)
	if err != nil {
		return CreateCommand{}, err
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return CreateCommand{}, newFailure(ErrValidation, "invalid multipart body: %v", err)
	}

	cmd := CreateCommand{
		PostedBy:    caller,
		Heading:     r.FormValue("heading"),
		Body:        r.FormValue("body"),
		ContentType: ContentType(r.FormValue("contentType")),
		GradeName:   r.FormValue("gradeName"),
		ClassName:   r.FormValue("className"),
	}

	if v := r.FormValue("reactions"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cmd, newFailure(ErrValidation, "invalid reactions %q", v)
		}
		cmd.Reactions = n
	}

	schoolID, err := uuid.Parse(r.FormValue("schoolId"))
	if err != nil {
		return cmd, newFailure(ErrValidation, "invalid schoolId %q", r.FormValue("schoolId"))
	}
	cmd.SchoolID = schoolID

	if cmd.Images, err = formFiles(r.MultipartForm, fieldImages); err != nil {
		return cmd, err
	}
	if cmd.Documents, err = formFiles(r.MultipartForm, fieldDocuments); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func (h *Handler) updateCommand(r *http.Request) (UpdateCommand, error) {
	caller, err := callerID(r)
	if err != nil {
		return UpdateCommand{}, err
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return UpdateCommand{}, newFailure(ErrValidation, "invalid multipart body: %v", err)
	}

	cmd := UpdateCommand{EditorID: caller}
	form := r.MultipartForm

	if v, ok := formValue(form, "heading"); ok {
		cmd.Heading = &v
	}
	if v, ok := formValue(form, "body"); ok {
		cmd.Body = &v
	}
	if v, ok := formValue(form, "contentType"); ok {
		ct := ContentType(v)
		cmd.ContentType = &ct
	}
	if v, ok := formValue(form, "reactions"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cmd, newFailure(ErrValidation, "invalid reactions %q", v)
		}
		cmd.Reactions = &n
	}

	if cmd.Images, err = formFiles(form, fieldImages); err != nil {
		return cmd, err
	}
	if cmd.Documents, err = formFiles(form, fieldDocuments); err != nil {
		return cmd, err
	}
	return cmd, nil
}

func callerID(r *http.Request) (uuid.UUID, error) {
	id, ok := auth.UserID(r.Context())
	if !ok {
		return uuid.Nil, auth.ErrUnauthorized
	}
	return id, nil
}

func pageParam(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	return page
}

func formValue(form *multipart.Form, key string) (string, bool) {
	if form == nil {
		return "", false
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// formFiles reads every file under field in submission order.
func formFiles(form *multipart.Form, field string) ([]media.File, error) {
	if form == nil {
		return nil, nil
	}

	headers := form.File[field]
	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, newFailure(ErrValidation, "invalid file %q: %v", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, newFailure(ErrValidation, "invalid file %q: %v", fh.Filename, err)
		}

		files = append(files, media.File{
			Name:        fh.Filename,
			ContentType: media.DetectContentType(fh.Header.Get("Content-Type"), data),
			Data:        data,
		})
	}
	return files, nil
}
