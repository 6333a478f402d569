package filestorage

import (
	"errors"
	"mime/multipart"
)

// Upload subdirectories
const (
	DirProfiles = "profiles"
	DirPosts    = "posts"
)

// MaxImageSize is the largest accepted image upload
const MaxImageSize = 5 << 20

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrUnsupportedImage = errors.New("only JPEG and PNG images are allowed")
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveImage validates an uploaded JPEG/PNG and stores it under subDir.
	// It returns the public path of the stored file.
	SaveImage(fileHeader *multipart.FileHeader, subDir string) (string, error)

	// DeleteFile removes a file by its public path. Missing files are not an error.
	DeleteFile(publicPath string) error
}
