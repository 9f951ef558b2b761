package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrTooLarge is returned when an upload exceeds the configured size.
	ErrTooLarge = errors.New("file exceeds maximum upload size")
	// ErrUnsupportedType is returned when an upload's MIME type is not allowed.
	ErrUnsupportedType = errors.New("file type not allowed")
	// ErrInvalidPath is returned for paths escaping the upload root.
	ErrInvalidPath = errors.New("invalid file path")
)

// Upload categories map onto subdirectories of the upload root.
const (
	CategoryRequests     = "requests"
	CategoryRequirements = "requirements"
	CategoryPayments     = "payments"
	CategoryPhotos       = "photos"
)

const officeMIMEPrefix = "application/vnd.openxmlformats-officedocument."

// extensions names stored files after their sniffed type.
var extensions = map[string]string{
	"application/pdf": ".pdf",
	"application/zip": ".zip",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       ".xlsx",
}

// ImageMIMEs is the allow-list used for profile photos.
var ImageMIMEs = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// StoredFile describes a persisted upload.
type StoredFile struct {
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
}

// LocalStorage persists uploads on disk under a base directory.
type LocalStorage struct {
	baseDir  string
	maxBytes int64
}

// NewLocalStorage ensures the base directory and its category folders exist.
func NewLocalStorage(baseDir string, maxBytes int64) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	for _, dir := range []string{CategoryRequests, CategoryRequirements, CategoryPayments, CategoryPhotos} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create upload directory: %w", err)
		}
	}
	return &LocalStorage{baseDir: baseDir, maxBytes: maxBytes}, nil
}

// SaveUpload validates the multipart file against the limit and allow-list
// and copies it under category with a generated name. The returned path is
// relative to the storage root.
func (s *LocalStorage) SaveUpload(category string, fh *multipart.FileHeader, allowed []string) (*StoredFile, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close() //nolint:errcheck

	contentType, err := detectContentType(fh, src)
	if err != nil {
		return nil, err
	}
	if !allowedType(contentType, allowed) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	rel := path.Join(category, uuid.NewString()+extension(contentType))
	dst, err := os.Create(s.resolve(rel))
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close() //nolint:errcheck

	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(s.resolve(rel))
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &StoredFile{
		Path:         rel,
		OriginalName: filepath.Base(fh.Filename),
		ContentType:  contentType,
		Size:         written,
	}, nil
}

// Open returns a read-only handle for a stored file.
func (s *LocalStorage) Open(rel string) (*os.File, error) {
	if !validRel(rel) {
		return nil, ErrInvalidPath
	}
	file, err := os.Open(s.resolve(rel))
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	if !validRel(rel) {
		return ErrInvalidPath
	}
	if err := os.Remove(s.resolve(rel)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// Path exposes the absolute location of a stored file.
func (s *LocalStorage) Path(rel string) string {
	return s.resolve(rel)
}

func (s *LocalStorage) resolve(rel string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(rel))
}

func validRel(rel string) bool {
	if rel == "" || strings.HasPrefix(rel, "/") || strings.Contains(rel, "\\") {
		return false
	}
	clean := path.Clean(rel)
	return clean == rel && clean != ".." && !strings.HasPrefix(clean, "../")
}

// detectContentType sniffs the leading bytes of the upload. The declared
// part header is only consulted to name an Office document inside a zip
// container.
func detectContentType(fh *multipart.FileHeader, src multipart.File) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload header: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if sniffed == "application/zip" {
		declared, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
		if err == nil && strings.HasPrefix(declared, officeMIMEPrefix) {
			return declared, nil
		}
	}
	return sniffed, nil
}

func allowedType(contentType string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if strings.EqualFold(candidate, contentType) {
			return true
		}
	}
	return false
}

func extension(contentType string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	return ".bin"
}

// ContentTypeOf maps a stored file name back to the type it was saved as.
// Unknown extensions are served as opaque bytes.
func ContentTypeOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for contentType, candidate := range extensions {
		if candidate == ext {
			return contentType
		}
	}
	return "application/octet-stream"
}
