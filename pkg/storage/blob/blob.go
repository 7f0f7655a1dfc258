// Package blob stores uploaded files either on the local filesystem or in
// an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
