package config

import (
	"github.com/JaimeStill/worksheet-lab/pkg/cache"
	"github.com/JaimeStill/worksheet-lab/pkg/storage"
)

var storageEnv = &storage.Env{
	Driver:        "STORAGE_DRIVER",
	BasePath:      "STORAGE_BASE_PATH",
	PublicURL:     "STORAGE_PUBLIC_URL",
	MaxUploadSize: "STORAGE_MAX_UPLOAD_SIZE",
	S3Endpoint:    "STORAGE_S3_ENDPOINT",
	S3Region:      "STORAGE_S3_REGION",
	S3Bucket:      "BUCKET",
	S3AccessKey:   "STORAGE_S3_ACCESS_KEY",
	S3SecretKey:   "STORAGE_S3_SECRET_KEY",
	S3UseSSL:      "STORAGE_S3_USE_SSL",
}

var cacheEnv = &cache.Env{
	Enabled:  "CACHE_ENABLED",
	Addr:     "CACHE_ADDR",
	Password: "CACHE_PASSWORD",
	DB:       "CACHE_DB",
	TTL:      "CACHE_TTL",
}
