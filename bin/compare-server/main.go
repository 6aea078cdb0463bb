package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ref-image/internal/config"
	"ref-image/internal/runnable"
	"ref-image/internal/storage"
)

func main() {
	var storageBackend string
	var directory string
	flag.StringVar(&storageBackend, "storage-backend", config.EnvOrDefaultValue("STORAGE_BACKEND", ""), "Storage backend for difference logs (file, s3, or empty to keep none)")
	flag.StringVar(&directory, "directory", config.EnvOrDefaultValue("DIRECTORY", "/tmp"), "Output directory for the file backend")
	flag.BoolVar(&runnable.Debug, "debug", config.EnvOrDefaultValue("DEBUG", false), "Enable debug endpoints and text logs")
	flag.Parse()

	ctx := context.Background()

	var s storage.Storage
	var err error
	switch storageBackend {
	case "":
	case "file":
		s, err = storage.NewFileStorage(ctx, storage.FileConfig{
			Directory: directory,
		})
	case "s3":
		s, err = storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:      os.Getenv("S3_BUCKET"),
			EndpointURL: os.Getenv("S3_ENDPOINT_URL"),
		})
	default:
		log.Fatalf("Unknown storage backend: %s", storageBackend)
	}
	if err != nil {
		log.Fatalf("Failed to create storage backend: %v", err)
	}

	server := runnable.NewServer(s)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
