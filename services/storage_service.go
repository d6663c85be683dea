package services

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/stansam/Tuned/config"
)

// FileStorage stores uploaded file blobs keyed by a generated unique name.
// The metadata row is the source of truth; a Delete failure leaks the blob,
// which is tolerated.
type FileStorage interface {
	// Save stores an uploaded file under a subdirectory and returns the storage key
	Save(fileHeader *multipart.FileHeader, subdir string) (string, error)

	// Open streams a stored file back
	Open(key string) (io.ReadCloser, error)

	// Delete removes a stored file, best effort
	Delete(key string) error
}

var storageInstance FileStorage

// InitFileStorage initializes the file storage backend from configuration
func InitFileStorage(cfg *config.Config) (FileStorage, error) {
	if cfg.StorageBackend == "s3" {
		s3, err := NewS3Storage(cfg)
		if err != nil {
			return nil, err
		}
		storageInstance = s3
		return storageInstance, nil
	}

	storageInstance = &LocalStorage{Dir: cfg.UploadDir}
	return storageInstance, nil
}

// GetFileStorage returns the initialized file storage instance
func GetFileStorage() FileStorage {
	return storageInstance
}

// SetFileStorage sets the file storage instance (primarily for testing)
func SetFileStorage(storage FileStorage) {
	storageInstance = storage
}

// LocalStorage stores files on the local filesystem under Dir
type LocalStorage struct {
	Dir string
}

// Save writes the uploaded file under a uuid-prefixed name and returns the
// key relative to the storage root
func (s *LocalStorage) Save(fileHeader *multipart.FileHeader, subdir string) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			log.Printf("warning: failed to close file: %v", closeErr)
		}
	}()

	key := filepath.Join(subdir, fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(fileHeader.Filename)))
	path := filepath.Join(s.Dir, key)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil {
			log.Printf("warning: failed to close file: %v", closeErr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return key, nil
}

// Open streams a stored file back
func (s *LocalStorage) Open(key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.Dir, key))
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file from disk
func (s *LocalStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, key)); err != nil {
		return fmt.Errorf("failed to delete stored file: %w", err)
	}
	return nil
}
