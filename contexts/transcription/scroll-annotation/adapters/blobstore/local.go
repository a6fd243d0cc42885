package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	domainerrors "github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/errors"
	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/ports"
)

var ErrInvalidKey = errors.New("invalid image key")

// LocalStore keeps images as flat files under one directory. Keys are plain
// file names; anything that would resolve outside the directory is refused.
type LocalStore struct {
	dir    string
	logger *slog.Logger
}

func NewLocalStore(dir string, logger *slog.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("image directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image directory: %w", err)
	}
	return &LocalStore{dir: dir, logger: logger}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, content io.Reader) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return s.logError("annotation_blob_put_failed", err, key)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, contextReader{ctx: ctx, r: content}); err != nil {
		_ = tmp.Close()
		return s.logError("annotation_blob_put_failed", err, key)
	}
	if err := tmp.Close(); err != nil {
		return s.logError("annotation_blob_put_failed", err, key)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return s.logError("annotation_blob_put_failed", err, key)
	}
	return nil
}

func (s *LocalStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domainerrors.ErrImageNotFound
		}
		return nil, s.logError("annotation_blob_open_failed", err, key)
	}
	return file, nil
}

func (s *LocalStore) Rename(_ context.Context, from string, to string) error {
	source, err := s.path(from)
	if err != nil {
		return err
	}
	target, err := s.path(to)
	if err != nil {
		return err
	}
	if err := os.Rename(source, target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domainerrors.ErrImageNotFound
		}
		return s.logError("annotation_blob_rename_failed", err, from, "new_image_key", to)
	}
	return nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s.logError("annotation_blob_delete_failed", err, key)
	}
	return nil
}

func (s *LocalStore) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.HasPrefix(key, ".") ||
		strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, key), nil
}

func (s *LocalStore) logError(event string, err error, key string, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+10)
	fields = append(fields,
		"event", event,
		"module", "transcription/scroll-annotation",
		"layer", "adapter",
		"image_key", key,
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("image store operation failed", fields...)
	return err
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

var _ ports.ImageStore = (*LocalStore)(nil)
