package media

import (
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/school-feed/pkg/handlers"
	"github.com/JaimeStill/school-feed/pkg/routes"
	"github.com/JaimeStill/school-feed/pkg/storage"
)

// Handler serves blobs written by the storage provider.
type Handler struct {
	store  storage.System
	logger *slog.Logger
}

func NewHandler(store storage.System, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger.With("handler", "media"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/media",
		Description: "Uploaded post images and documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.Serve},
		},
	}
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	data, err := h.store.Retrieve(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, mapStorageStatus(err), err)
		return
	}

	contentType := http.DetectContentType(data)
	if path.Ext(key) == ".pdf" {
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func mapStorageStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
