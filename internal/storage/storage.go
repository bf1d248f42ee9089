package storage

import (
	"context"
	"io"
	"time"
)

// Object describes an uploaded object.
type Object struct {
	Bucket string
	Key    string
	Size   int64
}

// Service writes export files to remote object storage and hands out
// time-limited download links for them.
type Service interface {
	Put(ctx context.Context, bucket, key, contentType string, body io.Reader) (Object, error)
	PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
