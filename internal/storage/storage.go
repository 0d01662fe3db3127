package storage

import (
	"context"
	"errors"
	"io"

	cfg "github.com/templui/sitefixtures/internal/config"
)

var ErrNotFound = errors.New("object not found")

// Storage defines the interface for fixture and snapshot file operations
type Storage interface {
	// Open returns the content stored at path; ErrNotFound if it does not exist
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Save stores a file at the given path
	Save(ctx context.Context, path string, file io.Reader) error

	// URL returns a human readable location of the file
	URL(path string) string
}

// New picks local or S3-compatible storage from the fixtures source
func New(c *cfg.Config) (Storage, error) {
	if c.FixturesFromS3() {
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.FixturesBucket(),
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	}
	return NewLocalStorage(c.FixturesSource), nil
}
