package services

import (
	"context"
	"errors"

	"heroes/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// UploadResult describes a stored image.
type UploadResult struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Message      string `json:"message"`
}

// ImageService stores character images and their thumbnails.
type ImageService struct {
	store     storage.ImageStore
	processor *storage.ImageProcessor
	urlPrefix string
}

// NewImageService creates a new ImageService. Stored files are addressed as
// urlPrefix + "/" + filename.
func NewImageService(store storage.ImageStore, processor *storage.ImageProcessor, urlPrefix string) *ImageService {
	return &ImageService{
		store:     store,
		processor: processor,
		urlPrefix: urlPrefix,
	}
}

// URL returns the public address of filename.
func (s *ImageService) URL(filename string) string {
	return s.urlPrefix + "/" + filename
}

// Upload validates data and stores it under a fresh name. A thumbnail that
// cannot be rendered is logged and left out of the result.
func (s *ImageService) Upload(ctx context.Context, data []byte) (*UploadResult, error) {
	ext, err := s.processor.Inspect(data)
	if err != nil {
		return nil, err
	}

	filename := uuid.New().String() + ext
	if err := s.store.Put(ctx, filename, data, storage.ContentType(filename)); err != nil {
		return nil, err
	}
	result := &UploadResult{
		URL:      s.URL(filename),
		Filename: filename,
		Message:  "Image uploaded successfully",
	}

	thumb, err := s.processor.Thumbnail(data)
	if err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("thumbnail generation failed")
		return result, nil
	}
	thumbName := storage.ThumbnailName(filename)
	if err := s.store.Put(ctx, thumbName, thumb, "image/jpeg"); err != nil {
		log.Warn().Err(err).Str("filename", thumbName).Msg("thumbnail upload failed")
		return result, nil
	}
	result.ThumbnailURL = s.URL(thumbName)
	return result, nil
}

// Open returns the content and content type of a stored file.
func (s *ImageService) Open(ctx context.Context, filename string) ([]byte, string, error) {
	if err := storage.ValidateFilename(filename); err != nil {
		return nil, "", err
	}
	data, err := s.store.Get(ctx, filename)
	if err != nil {
		return nil, "", err
	}
	return data, storage.ContentType(filename), nil
}

// Delete removes a stored image together with its thumbnail.
func (s *ImageService) Delete(ctx context.Context, filename string) error {
	if err := storage.ValidateFilename(filename); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, filename); err != nil {
		return err
	}
	thumbName := storage.ThumbnailName(filename)
	if thumbName != filename {
		if err := s.store.Delete(ctx, thumbName); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Str("filename", thumbName).Msg("thumbnail delete failed")
		}
	}
	return nil
}
