package posts

import (
	"net/url"

	"github.com/JaimeStill/school-feed/pkg/query"
	"github.com/google/uuid"
)

// Filters contains optional criteria for filtering posts.
type Filters struct {
	Grade       *string
	ContentType *ContentType
	ClassID     *uuid.UUID
	SchoolID    *uuid.UUID
}

// FiltersFromQuery extracts post filters from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if g := values.Get("grade"); g != "" {
		f.Grade = &g
	}

	if ct := values.Get("contentType"); ct != "" {
		contentType := ContentType(ct)
		if err := contentType.Validate(); err != nil {
			return f, err
		}
		f.ContentType = &contentType
	}

	if v := values.Get("classId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, newFailure(ErrValidation, "invalid classId: %v", err)
		}
		f.ClassID = &id
	}

	if v := values.Get("schoolId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, newFailure(ErrValidation, "invalid schoolId: %v", err)
		}
		f.SchoolID = &id
	}

	return f, nil
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.Grade != nil {
		b.WhereEquals("Grade", *f.Grade)
	}
	if f.ContentType != nil {
		b.WhereEquals("ContentType", string(*f.ContentType))
	}
	if f.ClassID != nil {
		b.WhereEquals("ClassID", *f.ClassID)
	}
	if f.SchoolID != nil {
		b.WhereEquals("SchoolID", *f.SchoolID)
	}
	return b
}
