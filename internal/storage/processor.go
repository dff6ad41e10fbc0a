package storage

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxBytes = 10 << 20
	// DefaultMaxPixels bounds width*height so decoding stays within memory.
	DefaultMaxPixels = 40_000_000
	ThumbnailSize    = 300
)

var extensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// ImageProcessor checks uploads and renders thumbnails.
type ImageProcessor struct {
	MaxBytes  int64
	MaxPixels int64
}

func NewImageProcessor(maxBytes int64) *ImageProcessor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &ImageProcessor{MaxBytes: maxBytes, MaxPixels: DefaultMaxPixels}
}

// Inspect validates data and returns the file extension matching its
// decoded format. The declared content type of an upload is never trusted.
func (p *ImageProcessor) Inspect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > p.MaxBytes {
		return "", fmt.Errorf("%w (%d MiB)", ErrTooLarge, p.MaxBytes>>20)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotImage
	}
	ext, ok := extensions[format]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotImage, format)
	}
	if err := p.checkDimensions(cfg); err != nil {
		return "", err
	}
	return ext, nil
}

func (p *ImageProcessor) checkDimensions(cfg image.Config) error {
	limit := p.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if int64(cfg.Width)*int64(cfg.Height) > limit {
		return fmt.Errorf("%w (%dx%d pixels, at most %d)", ErrTooLarge, cfg.Width, cfg.Height, limit)
	}
	return nil
}

// Thumbnail fits the image into a ThumbnailSize square and encodes it as JPEG.
func (p *ImageProcessor) Thumbnail(data []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}
	if err := p.checkDimensions(cfg); err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}
	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("cannot encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
