// Package storage keeps uploaded character images on local disk or in a
// MinIO bucket and produces their thumbnails.
package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	ErrNotFound        = errors.New("image not found")
	ErrInvalidFilename = errors.New("invalid image filename")
	ErrEmptyFile       = errors.New("file is empty")
	ErrTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrNotImage        = errors.New("file is not a supported image")
)

// ImageStore is a flat namespace of image files.
type ImageStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// ValidateFilename rejects names that could escape the store's namespace.
func ValidateFilename(name string) error {
	if name == "" || name == "." ||
		strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) {
		return ErrInvalidFilename
	}
	return nil
}

// ThumbnailName returns the name the thumbnail of name is stored under.
func ThumbnailName(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_thumb.jpg"
}

// ContentType guesses a content type from the file extension.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
