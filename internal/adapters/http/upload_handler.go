package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corkboard/core/internal/infrastructure/logger"
	"github.com/corkboard/core/internal/ports"
)

// UploadHandler accepts widget image uploads and returns their public URL.
type UploadHandler struct {
	store  ports.FileStore
	logger *logger.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(store ports.FileStore, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{
		store:  store,
		logger: logger,
	}
}

// Upload stores one multipart image under the "file" field. The returned
// URL becomes the content of an image widget.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file field")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.store.Save(c.Request().Context(), fileHeader.Filename, contentType, data)
	if err != nil {
		h.logger.Error("Upload failed", "error", err, "filename", fileHeader.Filename)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, UploadResponse{URL: url})
}

// UploadResponse carries the public URL of a stored asset.
type UploadResponse struct {
	URL string `json:"url"`
}
