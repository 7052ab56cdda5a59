package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrFileTooLarge = errors.New("file size exceeds limit")
	ErrFileNotFound = errors.New("file not found")
)

// BlobStorage принимает байтовый payload по заданному пути и возвращает
// стабильный публичный URL
type BlobStorage interface {
	Put(ctx context.Context, blobPath string, data []byte, overwrite bool) (publicURL string, err error)
	Delete(ctx context.Context, blobPath string) error
	BaseURL() string
}

// LocalBlobStorage реализация для локальной файловой системы
type LocalBlobStorage struct {
	baseDir string // Базовый каталог для хранения (например: "./uploads")
	baseURL string // Базовый URL для доступа к файлам (например: "http://localhost:8080/uploads")
	maxSize int64
}

func NewLocalBlobStorage(baseDir, baseURL string, maxSize int64) (*LocalBlobStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &LocalBlobStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}, nil
}

func (s *LocalBlobStorage) Put(ctx context.Context, blobPath string, data []byte, overwrite bool) (string, error) {
	const op = "storage.filestorage.Put"

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%s: %w", op, ErrFileTooLarge)
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(blobPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("%s: failed to create directories: %w", op, err)
	}

	if !overwrite {
		if _, err := os.Stat(fullPath); err == nil {
			return "", fmt.Errorf("%s: file already exists: %s", op, blobPath)
		}
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("%s: failed to write file: %w", op, err)
	}

	return s.publicURL(blobPath), nil
}

// Delete удаляет файл из хранилища
func (s *LocalBlobStorage) Delete(ctx context.Context, blobPath string) error {
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(blobPath))
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return err
	}
	return nil
}

// BaseURL возвращает базовый URL для доступа к файлам
func (s *LocalBlobStorage) BaseURL() string {
	return s.baseURL
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalBlobStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(relativePath))
}

func (s *LocalBlobStorage) publicURL(blobPath string) string {
	return s.baseURL + "/" + path.Clean(blobPath)
}
