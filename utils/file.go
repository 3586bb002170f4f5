package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

const uploadDir = "uploads"

// EnsureUploadDir creates the local uploads directory. It backs contest and
// prize art when no R2 bucket is configured.
func EnsureUploadDir() error {
	return os.MkdirAll(uploadDir, os.ModePerm)
}

// SaveFile writes an uploaded multipart file to destPath, creating parent
// directories as needed.
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// GetUploadPath maps an object key (e.g. "contests/main/abc123.png") to its
// location under the local uploads directory.
func GetUploadPath(key string) string {
	return filepath.Join(uploadDir, filepath.FromSlash(key))
}
