package openapi

import (
	"encoding/json"
	"net/http"
)

// NewSpec creates an empty 3.1 document.
func NewSpec(title, version string) *Spec {
	return &Spec{
		OpenAPI:    "3.1.0",
		Info:       &Info{Title: title, Version: version},
		Paths:      make(map[string]*PathItem),
		Components: NewComponents(),
	}
}

// FromConfig creates a document described by cfg.
func FromConfig(cfg *Config, version string) *Spec {
	spec := NewSpec(cfg.Title, version)
	spec.Info.Description = cfg.Description
	if cfg.ServerURL != "" {
		spec.Servers = []*Server{{URL: cfg.ServerURL}}
	}
	return spec
}

// NewComponents returns the shared envelope schema, error responses and bearer scheme.
func NewComponents() *Components {
	envelope := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"con":  {Type: "boolean", Description: "True on success"},
			"msg":  {Type: "string"},
			"data": {Description: "Response payload", Nullable: true},
		},
		Required: []string{"con", "msg"},
	}

	errorResponse := func(description string) *Response {
		return &Response{
			Description: description,
			Content: map[string]*MediaType{
				"application/json": {Schema: SchemaRef("Envelope")},
			},
		}
	}

	return &Components{
		Schemas: map[string]*Schema{
			"Envelope": envelope,
		},
		Responses: map[string]*Response{
			"BadRequest":   errorResponse("Invalid request"),
			"Unauthorized": errorResponse("Missing or invalid bearer token"),
			"Forbidden":    errorResponse("Caller may not perform this operation"),
			"NotFound":     errorResponse("Resource not found"),
			"BadGateway":   errorResponse("Media provider failure"),
		},
		SecuritySchemes: map[string]*SecurityScheme{
			"bearerAuth": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
		},
	}
}

// AddSchemas merges schemas into the components, replacing existing names.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	for name, schema := range schemas {
		c.Schemas[name] = schema
	}
}

// AddOperation sets op for method on path.
func (s *Spec) AddOperation(path, method string, op *Operation) {
	item, ok := s.Paths[path]
	if !ok {
		item = &PathItem{}
		s.Paths[path] = item
	}

	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPost:
		item.Post = op
	case http.MethodPut:
		item.Put = op
	case http.MethodDelete:
		item.Delete = op
	}
}

// MarshalJSON encodes spec with indentation.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// Handler serves the encoded document.
func Handler(data []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}
