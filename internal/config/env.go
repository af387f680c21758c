package config

import (
	"github.com/JaimeStill/school-feed/internal/media"
	"github.com/JaimeStill/school-feed/pkg/auth"
	"github.com/JaimeStill/school-feed/pkg/cache"
	"github.com/JaimeStill/school-feed/pkg/database"
	"github.com/JaimeStill/school-feed/pkg/events"
	"github.com/JaimeStill/school-feed/pkg/logging"
	"github.com/JaimeStill/school-feed/pkg/storage"
)

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	SSLMode:         "DATABASE_SSLMODE",
	AppName:         "DATABASE_APPLICATION_NAME",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
}

var loggingEnv = &logging.Env{
	Level:  "LOGGING_LEVEL",
	Format: "LOGGING_FORMAT",
	Source: "LOGGING_SOURCE",
}

var storageEnv = &storage.Env{
	Backend:        "STORAGE_BACKEND",
	BasePath:       "STORAGE_BASE_PATH",
	MaxUploadSize:  "STORAGE_MAX_UPLOAD_SIZE",
	S3Bucket:       "STORAGE_S3_BUCKET",
	S3Region:       "STORAGE_S3_REGION",
	S3Endpoint:     "STORAGE_S3_ENDPOINT",
	S3AccessKeyID:  "STORAGE_S3_ACCESS_KEY_ID",
	S3SecretKey:    "STORAGE_S3_SECRET_ACCESS_KEY",
	S3PathPrefix:   "STORAGE_S3_PATH_PREFIX",
	S3UsePathStyle: "STORAGE_S3_USE_PATH_STYLE",
}

var mediaEnv = &media.Env{
	Provider:        "MEDIA_PROVIDER",
	PublicURL:       "MEDIA_PUBLIC_URL",
	CloudinaryURL:   "CLOUDINARY_URL",
	ImagesBucket:    "MEDIA_IMAGES_BUCKET",
	DocumentsBucket: "MEDIA_DOCUMENTS_BUCKET",
	Serve:           "MEDIA_SERVE",
}

var authEnv = &auth.Env{
	Secret:   "AUTH_SECRET",
	Issuer:   "AUTH_ISSUER",
	TokenTTL: "AUTH_TOKEN_TTL",
}

var cacheEnv = &cache.Env{
	Enabled:  "CACHE_ENABLED",
	Addr:     "CACHE_ADDR",
	Password: "CACHE_PASSWORD",
	DB:       "CACHE_DB",
	TTL:      "CACHE_TTL",
}

var eventsEnv = &events.Env{
	Enabled: "EVENTS_ENABLED",
	URL:     "EVENTS_URL",
	Prefix:  "EVENTS_PREFIX",
}
