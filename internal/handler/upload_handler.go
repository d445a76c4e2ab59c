package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/marketplace/internal/response"
	"github.com/suteetoe/marketplace/pkg/logger"
	"github.com/suteetoe/marketplace/pkg/storage"
	"github.com/suteetoe/marketplace/prometheus"
	"go.uber.org/zap"
)

// UploadHandler stores multipart uploads
type UploadHandler struct {
	objects storage.ObjectStore
}

// NewUploadHandler creates an UploadHandler
func NewUploadHandler(objects storage.ObjectStore) *UploadHandler {
	return &UploadHandler{objects: objects}
}

// Upload stores the "file" form field and returns its URL
func (h *UploadHandler) Upload(c echo.Context) error {
	log := logger.FromEcho(c)

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("Missing upload file", zap.Error(err))
		return badRequest(c, "file is required")
	}

	src, err := file.Open()
	if err != nil {
		log.Error("Failed to open upload", zap.Error(err))
		return badRequest(c, "unreadable file")
	}
	defer src.Close()

	ctx := c.Request().Context()
	key := storage.NewKey(file.Filename)
	if err := h.objects.Put(ctx, key, src, file.Size, file.Header.Get(echo.HeaderContentType)); err != nil {
		return fail(c, log, err, "File")
	}
	url, err := h.objects.URL(ctx, key)
	if err != nil {
		if derr := h.objects.Delete(ctx, key); derr != nil {
			log.Warn("Failed to remove orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		return fail(c, log, err, "File")
	}
	prometheus.RecordUpload(file.Size)

	log.Info("File uploaded", zap.String("key", key), zap.Int64("size", file.Size))
	return response.OK(c, echo.Map{
		"filename":     key,
		"originalName": file.Filename,
		"url":          url,
	})
}

// Redirect sends the client to a short-lived direct link for a stored object
func Redirect(signer storage.Signer) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		key := c.Param("key")
		if key == "" || key != storage.SafeKey(key) {
			return response.Error(c, http.StatusNotFound, "File not found")
		}
		url, err := signer.SignedURL(c.Request().Context(), key)
		if err != nil {
			return fail(c, log, err, "File")
		}
		return c.Redirect(http.StatusFound, url)
	}
}
