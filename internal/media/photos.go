// Package media stores uploaded friend photos on local disk under a
// public URL prefix.
package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/edgard/friendbook/internal/errors"
	"github.com/edgard/friendbook/internal/logger"
)

const maxExtLen = 10

// Store writes photos into a single directory and names them with random UUIDs.
// It is safe for concurrent use: every Save gets a fresh filename.
type Store struct {
	dir    string
	prefix string
	logger *slog.Logger
}

// New returns a Store that writes to dir and publishes files under prefix.
func New(dir, prefix string, log *slog.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		dir:    dir,
		prefix: "/" + strings.Trim(prefix, "/"),
		logger: log.With("component", "media"),
	}
}

// Dir returns the directory photos are written to.
func (s *Store) Dir() string { return s.dir }

// Prefix returns the public URL prefix, always with a leading slash and no trailing one.
func (s *Store) Prefix() string { return s.prefix }

// Save copies r into a new file and returns its public URL.
// The original filename only contributes its extension.
func (s *Store) Save(ctx context.Context, r io.Reader, originalFilename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewStorageError("photo upload cancelled", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create media directory", "dir", s.dir, "error", err)
		return "", apperrors.NewStorageError("failed to create media directory", err)
	}

	filename := uuid.NewString() + sanitizeExt(originalFilename)
	target := filepath.Join(s.dir, filename)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create photo file", "path", target, "error", err)
		return "", apperrors.NewStorageError("failed to create photo file", err)
	}

	written, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		err := copyErr
		if err == nil {
			err = closeErr
		}
		if rmErr := os.Remove(target); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.WarnContext(ctx, "Failed to remove partial photo", "path", target, "error", rmErr)
		}
		s.logger.ErrorContext(ctx, "Failed to write photo", "path", target, "error", err)
		return "", apperrors.NewStorageError("failed to write photo", err)
	}

	url := path.Join(s.prefix, filename)
	s.logger.DebugContext(ctx, "Photo saved", "url", url, "bytes", written)
	return url, nil
}

// Remove deletes the file behind a URL returned by Save. Unknown or foreign
// URLs and already-missing files are ignored.
func (s *Store) Remove(url string) error {
	name, ok := strings.CutPrefix(url, s.prefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return apperrors.NewStorageError(fmt.Sprintf("failed to remove photo %s", name), err)
	}
	return nil
}

// sanitizeExt keeps a short alphanumeric extension of name, lower-cased,
// including the leading dot. Anything else yields no extension.
func sanitizeExt(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" || len(ext) > maxExtLen {
		return ""
	}
	ext = strings.ToLower(ext)
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return "." + ext
}
