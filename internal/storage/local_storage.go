package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxUploadSize caps a single image upload at 5 MB.
const MaxUploadSize = 5 << 20

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.\-]`)

// LocalStorage writes uploaded files under the public assets directory, so
// they are immediately servable at /images/<name>.
type LocalStorage struct {
	uploadDir string
}

func NewLocalStorage(uploadDir string) (*LocalStorage, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", uploadDir, err)
	}
	return &LocalStorage{uploadDir: uploadDir}, nil
}

// SaveImage stores one uploaded image and returns its public URL path.
// The stored name is timestamp-prefixed so repeated uploads of the same
// filename never collide.
func (s *LocalStorage) SaveImage(file *multipart.FileHeader) (string, error) {
	if err := s.ValidateImage(file); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeName(file.Filename))

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return "/images/" + name, nil
}

// SaveImages stores a batch of uploads and returns their public URL paths.
// It fails on the first bad file, leaving earlier files in place.
func (s *LocalStorage) SaveImages(files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p, err := s.SaveImage(f)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// ValidateImage checks size and content type before anything touches disk.
func (s *LocalStorage) ValidateImage(file *multipart.FileHeader) error {
	if file.Size > MaxUploadSize {
		return fmt.Errorf("file size exceeds maximum allowed size of %d bytes", int64(MaxUploadSize))
	}
	contentType := file.Header.Get("Content-Type")
	for _, allowed := range allowedImageTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}

// Remove deletes a previously stored image given its public URL path.
// Paths outside the upload dir are refused.
func (s *LocalStorage) Remove(publicPath string) error {
	name := filepath.Base(strings.TrimPrefix(publicPath, "/images/"))
	if name == "" || name == "." || name == "/" {
		return fmt.Errorf("invalid image path %q", publicPath)
	}
	err := os.Remove(filepath.Join(s.uploadDir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func sanitizeName(name string) string {
	base := filepath.Base(name)
	cleaned := unsafeNameChars.ReplaceAllString(base, "")
	if cleaned == "" || strings.Trim(cleaned, ".") == "" {
		cleaned = "upload"
	}
	return cleaned
}
