package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxFileSize is 50MB in bytes
	MaxFileSize = 50 * 1024 * 1024
)

// allowedExtensions covers the document, archive, and image formats a
// client may attach to an order
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
	".rtf":  true,
	".odt":  true,
	".ppt":  true,
	".pptx": true,
	".xls":  true,
	".xlsx": true,
	".csv":  true,
	".zip":  true,
	".rar":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidateUpload checks a multipart file against size and extension rules
func ValidateUpload(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return &FileUploadError{
			Code:    "NO_FILE",
			Message: "No file provided",
		}
	}

	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum of %d bytes", MaxFileSize),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return &FileUploadError{
			Code:    "INVALID_FORMAT",
			Message: fmt.Sprintf("File type %q is not allowed", ext),
		}
	}

	return nil
}

// FileFormat returns the lowercased extension without the leading dot,
// used as the stored format label for delivery files
func FileFormat(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// IsPicture reports whether a filename looks like an image, which decides
// the delivery file type label
func IsPicture(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}
