// Package uploads keeps the raw files behind ingested documents.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fabfab/study-agent/config"
)

var ErrNotFound = errors.New("upload not found")

type Store interface {
	Save(ctx context.Context, key string, r io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// New returns the store selected by cfg.UploadDriver.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.UploadDriver {
	case config.UploadDriverLocal, "":
		return NewLocal(cfg.UploadDir)
	case config.UploadDriverGCS:
		return NewGCS(ctx, cfg.GCSBucket, cfg.GoogleCredentialsFile)
	default:
		return nil, fmt.Errorf("unsupported upload driver %q", cfg.UploadDriver)
	}
}
