package handlers

import (
	"fmt"
	"io"

	"heroes/internal/services"
	"heroes/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles image uploads and downloads.
type UploadHandler struct {
	service  *services.ImageService
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service *services.ImageService, maxBytes int64) *UploadHandler {
	return &UploadHandler{service: service, maxBytes: maxBytes}
}

// RegisterRoutes registers the upload routes. auth guards the write routes.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Post("/upload/image", auth, h.HandleUpload)
	router.Get("/upload/image/:filename", h.HandleServe)
	router.Delete("/upload/image/:filename", auth, h.HandleDelete)
}

// RegisterPublicRoutes serves stored files at the URLs returned by uploads.
func (h *UploadHandler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/uploads/:filename", h.HandleServe)
}

// HandleUpload stores the multipart field "file".
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Multipart field 'file' is required")
	}
	if fh.Size > h.maxBytes {
		return fmt.Errorf("%w (%d MiB)", storage.ErrTooLarge, h.maxBytes>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return err
	}

	result, err := h.service.Upload(c.UserContext(), data)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleServe writes a stored image inline.
func (h *UploadHandler) HandleServe(c *fiber.Ctx) error {
	filename := c.Params("filename")
	data, contentType, err := h.service.Open(c.UserContext(), filename)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Send(data)
}

// HandleDelete removes a stored image.
func (h *UploadHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("filename")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Image deleted successfully"})
}
