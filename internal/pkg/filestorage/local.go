package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tarcin/docissuer/internal/pkg/logger"
)

// ErrInvalidPath is returned for paths escaping the storage root
var ErrInvalidPath = errors.New("invalid storage path")

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the base directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// Save copies r into subPath under a uuid name that keeps the original extension
func (ls *LocalStorage) Save(r io.Reader, filename, subPath string) (*StoredFile, error) {
	rel := filepath.Clean(subPath)
	if rel == "." {
		rel = ""
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, subPath)
	}

	dir := filepath.Join(ls.basePath, rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, r)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	stored := &StoredFile{
		Path:     filepath.ToSlash(filepath.Join(rel, name)),
		Filename: filename,
		FileSize: size,
	}
	logger.Info().Str("filename", filename).Str("path", stored.Path).Int64("size", size).Msg("File saved successfully")
	return stored, nil
}

func (ls *LocalStorage) resolve(path string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(path))
	if path == "" || rel == "." || filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return filepath.Join(ls.basePath, rel), nil
}

// Open returns the content of a stored file
func (ls *LocalStorage) Open(path string) (io.ReadCloser, error) {
	full, err := ls.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// DeleteFile removes a stored file. Deleting a missing file succeeds.
func (ls *LocalStorage) DeleteFile(path string) error {
	full, err := ls.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", full).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", full).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", full).Msg("File deleted successfully")
	return nil
}
