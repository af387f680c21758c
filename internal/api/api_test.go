package api_test

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/JaimeStill/school-feed/internal/api"
	"github.com/JaimeStill/school-feed/internal/config"
	"github.com/JaimeStill/school-feed/internal/posts"
	"github.com/JaimeStill/school-feed/pkg/routes"
)

func TestGenerateSpec(t *testing.T) {
	cfg := &config.Config{Version: "1.2.3"}
	cfg.API.BasePath = "/api"
	cfg.API.OpenAPI.Title = "School Feed API"

	handler := posts.NewHandler(nil, slog.New(slog.DiscardHandler), 1<<20)

	data, err := api.GenerateSpec(cfg, []routes.Group{handler.Routes()})
	if err != nil {
		t.Fatalf("GenerateSpec() error = %v", err)
	}

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths      map[string]map[string]json.RawMessage `json:"paths"`
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode spec: %v", err)
	}

	if doc.Info.Title != "School Feed API" || doc.Info.Version != "1.2.3" {
		t.Errorf("info = %+v", doc.Info)
	}

	want := map[string][]string{
		"/api/posts":               {"post"},
		"/api/posts/progress":      {"post"},
		"/api/posts/feeds":         {"get"},
		"/api/posts/announcements": {"get"},
		"/api/posts/filter":        {"get"},
		"/api/posts/{id}":          {"get", "put", "delete"},
	}
	for path, methods := range want {
		item, ok := doc.Paths[path]
		if !ok {
			t.Errorf("missing path %s", path)
			continue
		}
		for _, m := range methods {
			if _, ok := item[m]; !ok {
				t.Errorf("missing %s %s", m, path)
			}
		}
	}

	for _, name := range []string{"Envelope", "Post", "CreatePostForm", "ProgressEvent"} {
		if _, ok := doc.Components.Schemas[name]; !ok {
			t.Errorf("missing schema %s", name)
		}
	}
}
