package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/school-feed/internal/config"
	"github.com/JaimeStill/school-feed/internal/posts"
	"github.com/JaimeStill/school-feed/pkg/openapi"
	"github.com/JaimeStill/school-feed/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	runtime *Runtime,
	domain *Domain,
	cfg *config.Config,
) error {
	postsHandler := posts.NewHandler(domain.Posts, runtime.Logger, cfg.Storage.MaxUploadSizeBytes())

	postsGroup := postsHandler.Routes()
	postsGroup.Middleware = authenticated(cfg, runtime)

	groups := []routes.Group{postsGroup}
	routes.Register(mux, cfg.API.BasePath, groups...)

	spec, err := generateSpec(cfg, groups)
	if err != nil {
		return err
	}
	mux.Handle("GET "+cfg.API.BasePath+"/openapi.json", openapi.Handler(spec))
	return nil
}

func generateSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.FromConfig(&cfg.API.OpenAPI, cfg.Version)
	spec.Components.AddSchemas(posts.Spec.Schemas())

	for _, g := range groups {
		g.AddToSpec(cfg.API.BasePath, spec)
	}

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
