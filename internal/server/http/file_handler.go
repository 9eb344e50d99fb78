package http

import (
	"context"
	"io"
	"net/http"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
	"github.com/gin-gonic/gin"
)

// FileAPI is implemented by services.FileService.
type FileAPI interface {
	Upload(ctx context.Context, u services.Upload) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// FileHandler serves /file.
type FileHandler struct {
	files  FileAPI
	logger logging.Logger
}

func NewFileHandler(f FileAPI, l logging.Logger) *FileHandler {
	return &FileHandler{files: f, logger: l.With("module", "file_handler")}
}

func (h *FileHandler) Upload(c *gin.Context) {
	upload, closeFn, err := formUpload(c, "file")
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	defer closeFn()
	if upload == nil {
		abortWithError(c, h.logger, common.ErrEmptyFile)
		return
	}

	name, err := h.files.Upload(c.Request.Context(), *upload)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, "File uploaded: %s", name)
}

func (h *FileHandler) Serve(c *gin.Context) {
	rc, contentType, err := h.files.Open(c.Request.Context(), c.Param("fileName"))
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn(c.Request.Context(), "file stream interrupted", "error", err)
	}
}
