package storage

import (
	"context"
)

// Storage is where reftest inputs are read from and reftest logs are written to.
type Storage interface {
	// Put stores data under key and returns a URL that Get accepts
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves data from a URL returned by Put, or from any path the backend understands
	Get(ctx context.Context, url string) ([]byte, error)
}
