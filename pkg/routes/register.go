package routes

import (
	"net/http"
)

// Register adds every route of groups to mux beneath basePath.
// Group middleware wraps the routes of that group and its children.
func Register(mux *http.ServeMux, basePath string, groups ...Group) {
	for _, g := range groups {
		register(mux, basePath, g, nil)
	}
}

func register(mux *http.ServeMux, parentPrefix string, group Group, inherited []func(http.Handler) http.Handler) {
	prefix := parentPrefix + group.Prefix
	chain := append(append([]func(http.Handler) http.Handler{}, inherited...), group.Middleware...)

	for _, route := range group.Routes {
		var h http.Handler = route.Handler
		for i := len(chain) - 1; i >= 0; i-- {
			h = chain[i](h)
		}
		mux.Handle(route.Method+" "+prefix+route.Pattern, h)
	}

	for _, child := range group.Children {
		register(mux, prefix, child, chain)
	}
}
