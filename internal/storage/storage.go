// Package storage persists user avatar images in an object store.
// Backends exist for MinIO and Google Cloud Storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnsupportedContentType is returned for non-image avatar uploads.
var ErrUnsupportedContentType = errors.New("unsupported avatar content type")

// ObjectStorage defines common object operations across backends.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// AvatarStore stores one avatar object per user.
type AvatarStore struct {
	backend ObjectStorage
}

func NewAvatarStore(backend ObjectStorage) *AvatarStore {
	return &AvatarStore{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *AvatarStore) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads the avatar for the given user, replacing any previous one.
// Only image content types are accepted.
func (s *AvatarStore) Put(ctx context.Context, userID int, r io.Reader, size int64, contentType string) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrUnsupportedContentType
	}
	return s.backend.Put(ctx, avatarKey(userID), r, size, contentType)
}

// Get opens a reader for the given user's avatar.
func (s *AvatarStore) Get(ctx context.Context, userID int) (io.ReadCloser, error) {
	return s.backend.Get(ctx, avatarKey(userID))
}

// Delete removes the given user's avatar.
func (s *AvatarStore) Delete(ctx context.Context, userID int) error {
	return s.backend.Delete(ctx, avatarKey(userID))
}

func avatarKey(userID int) string {
	return fmt.Sprintf("users/%d/avatar", userID)
}
