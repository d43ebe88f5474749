// Package files stores uploaded documents on the local filesystem under a
// single content directory. Callers hold relative paths only; the directory
// root never leaves this package.
package files

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge    = errors.New("files: upload exceeds size limit")
	ErrBadType     = errors.New("files: unsupported file type")
	ErrOutsideRoot = errors.New("files: path escapes storage root")
)

// Storage saves and removes uploads. Stored names are freshly minted UUIDs,
// so an upload can never overwrite another and original filenames never
// reach the disk.
type Storage struct {
	root     string
	maxBytes int64
}

func New(root string, maxBytes int64) (*Storage, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("files: create root: %w", err)
	}
	return &Storage{root: root, maxBytes: maxBytes}, nil
}

// Resumes and agreements are documents, nothing else.
var allowedExts = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// Save writes the upload into subdir under the root and returns the relative
// path to persist. The extension is taken from the client filename after
// validation; the rest of the name is discarded.
func (s *Storage) Save(file multipart.File, header *multipart.FileHeader, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		return "", ErrBadType
	}
	if s.maxBytes > 0 && header.Size > s.maxBytes {
		return "", ErrTooLarge
	}

	rel := filepath.Join(subdir, uuid.NewString()+ext)
	abs, err := s.abs(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", err
	}

	dst, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// LimitReader backstops a lying Content-Length.
	limit := s.maxBytes
	if limit <= 0 {
		limit = header.Size
	}
	n, err := io.Copy(dst, io.LimitReader(file, limit+1))
	if err != nil {
		os.Remove(abs)
		return "", err
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		os.Remove(abs)
		return "", ErrTooLarge
	}
	return filepath.ToSlash(rel), nil
}

// Remove deletes a previously stored file by its relative path. Missing files
// are not an error: replacement flows retry deletes.
func (s *Storage) Remove(rel string) error {
	abs, err := s.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Open returns a handle for serving the stored file.
func (s *Storage) Open(rel string) (*os.File, error) {
	abs, err := s.abs(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

// abs resolves rel inside the root and refuses traversal out of it.
func (s *Storage) abs(rel string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(s.root) + string(filepath.Separator)
	if !strings.HasPrefix(abs, cleanRoot) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}
