// Package storage keeps uploaded user files, avatars for now, on the local
// disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidKey = errors.New("storage: invalid key")

// Storage stores opaque objects by key. Keys use forward slashes.
type Storage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
}

// CleanKey validates key and returns its canonical form. Absolute keys and
// keys escaping the root are rejected.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// AvatarKey returns a fresh key for an avatar of userID.
func AvatarKey(userID, ext string) string {
	return path.Join("avatars", userID, uuid.NewString()+ext)
}

var imageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage sniffs the first bytes of an upload and reports the content
// type and file extension of the supported image formats.
func DetectImage(head []byte) (contentType, ext string, ok bool) {
	contentType = http.DetectContentType(head)
	ext, ok = imageTypes[contentType]
	if !ok {
		return "", "", false
	}
	return contentType, ext, true
}
