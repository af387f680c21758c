package api

import (
	"github.com/JaimeStill/school-feed/internal/classes"
	"github.com/JaimeStill/school-feed/internal/config"
	"github.com/JaimeStill/school-feed/internal/media"
	"github.com/JaimeStill/school-feed/internal/posts"
	"github.com/JaimeStill/school-feed/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Users   users.System
	Classes classes.System
	Media   media.System
	Posts   posts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	usersSys := users.New(db, runtime.Logger)
	classesSys := classes.New(db, runtime.Logger)

	mediaSys, err := media.New(&cfg.Media, runtime.Storage, runtime.Logger)
	if err != nil {
		return nil, err
	}

	postsSys := posts.New(
		posts.NewStore(db, runtime.Logger),
		usersSys,
		classesSys,
		mediaSys,
		runtime.Cache,
		runtime.Events,
		posts.Config{
			PageSize:        runtime.Pagination.DefaultPageSize,
			ImagesBucket:    cfg.Media.ImagesBucket,
			DocumentsBucket: cfg.Media.DocumentsBucket,
		},
		runtime.Logger,
	)

	return &Domain{
		Users:   usersSys,
		Classes: classesSys,
		Media:   mediaSys,
		Posts:   postsSys,
	}, nil
}
