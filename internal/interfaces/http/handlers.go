package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/infrastructure/storage"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services Services
	files    port.FileStorage
	logger   Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, files port.FileStorage, logger Logger) *Handlers {
	return &Handlers{
		services: services,
		files:    files,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// respondError maps domain sentinels onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func (h *Handlers) respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func (h *Handlers) respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// saveUpload stores one multipart file under subdir with a timestamped
// safe name and returns the stored relative path
func (h *Handlers) saveUpload(ctx context.Context, file *multipart.FileHeader, subdir string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), storage.SafeName(file.Filename))
	relPath := filepath.Join(subdir, name)

	if err := h.files.Save(ctx, relPath, content); err != nil {
		return "", err
	}
	return relPath, nil
}
