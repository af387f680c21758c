package posts

import "github.com/JaimeStill/school-feed/pkg/openapi"

type spec struct {
	Create             *openapi.Operation
	CreateWithProgress *openapi.Operation
	Update             *openapi.Operation
	Delete             *openapi.Operation
	Find               *openapi.Operation
	Feed               *openapi.Operation
	Announcements      *openapi.Operation
	Filter             *openapi.Operation
}

// Spec contains OpenAPI operation definitions for all post endpoints.
var Spec = spec{
	Create: &openapi.Operation{
		Summary:     "Create post",
		Description: "Uploads attachments and saves a feed post or class announcement. Announcements require the caller to be registered in the target class.",
		Security:    openapi.BearerAuth,
		RequestBody: openapi.RequestBodyMultipart("CreatePostForm", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Post created", "PostEnvelope"),
			400: openapi.ResponseRef("BadRequest"),
			401: openapi.ResponseRef("Unauthorized"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
			502: openapi.ResponseRef("BadGateway"),
		},
	},
	CreateWithProgress: &openapi.Operation{
		Summary:     "Create post with progress",
		Description: "Same as create, streaming upload progress as server-sent events. The last event carries the post or an error. An invalid form or missing caller yields a single error event.",
		Security:    openapi.BearerAuth,
		RequestBody: openapi.RequestBodyMultipart("CreatePostForm", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseEventStream("Progress events", "ProgressEvent"),
		},
	},
	Update: &openapi.Operation{
		Summary:     "Update post",
		Description: "Merges the provided fields. New attachments replace the existing ones of the same kind.",
		Security:    openapi.BearerAuth,
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Post UUID"),
		},
		RequestBody: openapi.RequestBodyMultipart("UpdatePostForm", false),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Post updated", "PostEnvelope"),
			400: openapi.ResponseRef("BadRequest"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Delete: &openapi.Operation{
		Summary:     "Delete post",
		Description: "Removes the post, its attachments and its class link",
		Security:    openapi.BearerAuth,
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Post UUID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Post deleted", "PostEnvelope"),
			403: openapi.ResponseRef("Forbidden"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Find: &openapi.Operation{
		Summary:  "Find post by ID",
		Security: openapi.BearerAuth,
		Parameters: []*openapi.Parameter{
			openapi.PathParam("id", "Post UUID"),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Post", "PostEnvelope"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Feed: &openapi.Operation{
		Summary:     "Feed",
		Description: "Feed posts of the caller's schools, newest first",
		Security:    openapi.BearerAuth,
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of feed posts", "FeedEnvelope"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Announcements: &openapi.Operation{
		Summary:     "Announcements",
		Description: "Announcements of every class the caller is registered in, grouped by class",
		Security:    openapi.BearerAuth,
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page of announcements", "AnnouncementEnvelope"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Filter: &openapi.Operation{
		Summary:  "Filter posts",
		Security: openapi.BearerAuth,
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("grade", "string", "Grade name", false),
			openapi.QueryParam("contentType", "string", "feed or announcement", false),
			openapi.QueryParam("classId", "string", "Class UUID", false),
			openapi.QueryParam("schoolId", "string", "School UUID", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Matching posts", "PostListEnvelope"),
			400: openapi.ResponseRef("BadRequest"),
		},
	},
}

func envelopeOf(data *openapi.Schema) *openapi.Schema {
	return &openapi.Schema{
		Type:     "object",
		Required: []string{"con", "msg"},
		Properties: map[string]*openapi.Schema{
			"con":  {Type: "boolean"},
			"msg":  {Type: "string"},
			"data": data,
		},
	}
}

// Schemas returns the post domain schemas for OpenAPI components.
func (spec) Schemas() map[string]*openapi.Schema {
	urls := &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string", Format: "uri"}}
	files := &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string", Format: "binary"}}
	contentType := &openapi.Schema{Type: "string", Enum: []string{string(ContentFeed), string(ContentAnnouncement)}}

	return map[string]*openapi.Schema{
		"Post": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id": {Type: "string", Format: "uuid"},
				"postedBy": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"id":             {Type: "string", Format: "uuid"},
						"userName":       {Type: "string"},
						"profilePicture": {Type: "string"},
						"roles":          {Type: "array", Items: &openapi.Schema{Type: "string"}},
					},
				},
				"heading":         {Type: "string"},
				"body":            {Type: "string"},
				"contentPictures": urls,
				"documents":       urls,
				"contentType":     contentType,
				"classId":         {Type: "string", Format: "uuid", Nullable: true},
				"grade":           {Type: "string", Nullable: true},
				"schoolId":        {Type: "string", Format: "uuid"},
				"reactions":       {Type: "integer"},
				"createdAt":       {Type: "string", Format: "date-time"},
				"updatedAt":       {Type: "string", Format: "date-time"},
			},
		},
		"CreatePostForm": {
			Type:     "object",
			Required: []string{"contentType", "schoolId"},
			Properties: map[string]*openapi.Schema{
				"heading":      {Type: "string"},
				"body":         {Type: "string"},
				"contentType":  contentType,
				"reactions":    {Type: "integer"},
				"gradeName":    {Type: "string", Description: "Required for announcements"},
				"className":    {Type: "string", Description: "Required for announcements"},
				"schoolId":     {Type: "string", Format: "uuid"},
				fieldImages:    files,
				fieldDocuments: files,
			},
		},
		"UpdatePostForm": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"heading":      {Type: "string"},
				"body":         {Type: "string"},
				"contentType":  {Type: "string", Description: "Must equal the current content type"},
				"reactions":    {Type: "integer"},
				fieldImages:    files,
				fieldDocuments: files,
			},
		},
		"ProgressEvent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"status":   {Type: "string", Enum: []string{StatusUploading, StatusProgress, StatusComplete}},
				"type":     {Type: "string", Enum: []string{PhaseImages, PhaseImage, PhaseDocuments, PhaseDocument, PhasePost}},
				"current":  {Type: "integer"},
				"total":    {Type: "integer"},
				"progress": {Type: "integer", Description: "Document upload percentage"},
				"error":    {Type: "string"},
				"data":     openapi.SchemaRef("Post"),
			},
		},
		"PostEnvelope":     envelopeOf(openapi.SchemaRef("Post")),
		"PostListEnvelope": envelopeOf(&openapi.Schema{Type: "array", Items: openapi.SchemaRef("Post")}),
		"FeedEnvelope": envelopeOf(&openapi.Schema{
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"items":      {Type: "array", Items: openapi.SchemaRef("Post")},
				"page":       {Type: "integer"},
				"pageSize":   {Type: "integer"},
				"totalPages": {Type: "integer"},
				"totalItems": {Type: "integer"},
			},
		}),
		"AnnouncementEnvelope": envelopeOf(&openapi.Schema{
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"announcements":      {Type: "array", Items: openapi.SchemaRef("Post")},
				"currentPage":        {Type: "integer"},
				"totalPages":         {Type: "integer"},
				"totalAnnouncements": {Type: "integer"},
			},
		}),
	}
}
