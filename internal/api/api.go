// Package api assembles the domain systems and registers their HTTP routes.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/school-feed/internal/config"
	"github.com/JaimeStill/school-feed/internal/infrastructure"
	"github.com/JaimeStill/school-feed/internal/media"
	"github.com/JaimeStill/school-feed/pkg/auth"
	"github.com/JaimeStill/school-feed/pkg/routes"
)

// Register builds the domain and adds every API route to mux beneath cfg.API.BasePath,
// along with the generated OpenAPI document at <base>/openapi.json.
// When media serving is enabled, stored blobs are exposed at the root under /media.
func Register(mux *http.ServeMux, cfg *config.Config, infra *infrastructure.Infrastructure) error {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(cfg, runtime)
	if err != nil {
		return fmt.Errorf("domain init failed: %w", err)
	}

	if err := registerRoutes(mux, runtime, domain, cfg); err != nil {
		return err
	}

	if cfg.Media.Serve {
		mediaHandler := media.NewHandler(runtime.Storage, runtime.Logger)
		routes.Register(mux, "", mediaHandler.Routes())
	}
	return nil
}

func authenticated(cfg *config.Config, runtime *Runtime) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		auth.Middleware(&cfg.Auth, runtime.Logger),
	}
}
