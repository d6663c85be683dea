package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"sync"
)

// MockFileStorage is an in-memory FileStorage implementation for testing
type MockFileStorage struct {
	files map[string][]byte
	mu    sync.RWMutex
}

// NewMockFileStorage creates a new mock file storage
func NewMockFileStorage() *MockFileStorage {
	return &MockFileStorage{
		files: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global storage instance for testing
func (m *MockFileStorage) SetAsMockForTesting() {
	SetFileStorage(m)
}

// Save stores the uploaded file content in memory
func (m *MockFileStorage) Save(fileHeader *multipart.FileHeader, subdir string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := filepath.Join(subdir, "mock_"+filepath.Base(fileHeader.Filename))

	m.mu.Lock()
	m.files[key] = content
	m.mu.Unlock()

	return key, nil
}

// Open streams stored content back
func (m *MockFileStorage) Open(key string) (io.ReadCloser, error) {
	m.mu.RLock()
	content, ok := m.files[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("file not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Delete removes stored content
func (m *MockFileStorage) Delete(key string) error {
	m.mu.Lock()
	delete(m.files, key)
	m.mu.Unlock()
	return nil
}

// FileCount returns the number of stored files
func (m *MockFileStorage) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
