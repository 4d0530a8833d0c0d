package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spicon/registration/internal/application/port"
)

// LocalFileStorage implements port.FileStorage on the local filesystem.
// Uploaded payment screenshots and expense proof images land here; the
// HTTP layer serves them back as static files.
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) port.FileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes content to the specified relative path
func (s *LocalFileStorage) Save(ctx context.Context, path string, content []byte) error {
	fullPath := s.FullPath(path)

	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("write file: %w", err)
	}

	s.logger.Debug("File saved",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))
	return nil
}

// Read reads content from the specified relative path
func (s *LocalFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	fullPath := s.FullPath(path)

	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return content, nil
}

// Exists checks if a file exists at the specified relative path
func (s *LocalFileStorage) Exists(ctx context.Context, path string) bool {
	_, err := os.Stat(s.FullPath(path))
	return err == nil
}

// FullPath converts a relative path to a full path inside the storage root
func (s *LocalFileStorage) FullPath(relativePath string) string {
	return filepath.Join(s.baseDir, relativePath)
}

// validatePath checks that the path is safe and within baseDir
func (s *LocalFileStorage) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]`)

// SafeName returns a filesystem-safe version of an uploaded file name.
// Path separators and parent references are stripped so user-supplied
// names cannot traverse out of the storage root.
func SafeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	return unsafeNameChars.ReplaceAllString(name, "_")
}
