package posts

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/school-feed/pkg/auth"
)

// Error categories. Errors returned by System match exactly one of these with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUploadFailure      = errors.New("file upload failed")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrValidation         = errors.New("validation failure")
)

// failure carries a client-facing message while matching its category.
type failure struct {
	category error
	msg      string
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.category }

func newFailure(category error, format string, args ...any) error {
	return &failure{category: category, msg: fmt.Sprintf(format, args...)}
}

var (
	errPostNotFound   = newFailure(ErrNotFound, "post not found")
	errClassNotFound  = newFailure(ErrNotFound, "class not found")
	errUserNotFound   = newFailure(ErrNotFound, "user not found")
	errNotClassMember = newFailure(ErrForbidden, "you are not registered in this class")
	errNotPoster      = newFailure(ErrForbidden, "only the poster may modify this post")
	errNoClasses      = newFailure(ErrValidation, "no classes registered for you")
)

// uploadError reports a failed upload. Error gives the generic message used by
// synchronous requests; progress streams name the file kind instead.
type uploadError struct {
	kind  string
	cause error
}

func (e *uploadError) Error() string { return fmt.Sprintf("file upload failed: %v", e.cause) }
func (e *uploadError) Unwrap() error { return ErrUploadFailure }

func uploadFailure(kind string, err error) error {
	return &uploadError{kind: kind, cause: err}
}

// progressMessage renders err for the terminal event of a progress stream.
func progressMessage(err error) string {
	var ue *uploadError
	if errors.As(err, &ue) {
		return fmt.Sprintf("%s upload failed: %v", ue.kind, ue.cause)
	}
	return err.Error()
}

func mediaDeleteFailure(kind string, err error) error {
	return newFailure(ErrUploadFailure, "%s delete failed: %v", kind, err)
}

func persistenceFailure(op string, err error) error {
	return newFailure(ErrPersistenceFailure, "%s: %v", op, err)
}

// MapHTTPStatus maps domain errors to HTTP status codes.
// Unclassified errors return 0 so the response falls back to the default status.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUploadFailure):
		return http.StatusBadGateway
	case errors.Is(err, ErrPersistenceFailure):
		return http.StatusInternalServerError
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return 0
	}
}
