// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package objstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/amc2/internal/logging"
)

// Extended attribute names. The mime type follows the freedesktop.org
// common extended attributes.
const (
	xattrMimeType     = "user.mime_type"
	xattrLastModified = "user.last_modified"
	xattrLastFetched  = "user.last_fetched"
)

// ParseFileURL returns the filesystem path of a file:// URL.
func ParseFileURL(raw string) (string, error) {
	if !strings.HasPrefix(raw, "file://") {
		return "", fmt.Errorf("not a file:// URL %q", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse file URL %q: %w", raw, err)
	}
	if u.Path == "" {
		return "", fmt.Errorf("the URL %q must contain a path", raw)
	}
	return filepath.FromSlash(u.Path), nil
}

// FileStore keeps objects as plain files. The content type and timestamps are
// kept in extended attributes so the files stay usable by other tools.
//
// Names may be relative to the base path, absolute paths or file:// URLs.
type FileStore struct {
	basePath string
	mu       sync.Mutex
}

// NewFileStore creates a file store rooted at a path or file:// URL.
func NewFileStore(base string) (*FileStore, error) {
	if strings.HasPrefix(base, "file://") {
		p, err := ParseFileURL(base)
		if err != nil {
			return nil, err
		}
		base = p
	}
	if base == "" {
		return nil, errors.New("file store: base path must not be empty")
	}
	return &FileStore{basePath: base}, nil
}

// BasePath returns the directory names are resolved against.
func (s *FileStore) BasePath() string {
	return s.basePath
}

func (s *FileStore) namePath(name string) (string, error) {
	switch {
	case strings.HasPrefix(name, "file://"):
		return ParseFileURL(name)
	case filepath.IsAbs(name):
		return name, nil
	default:
		return filepath.Join(s.basePath, name), nil
	}
}

// Stat implements Store.
func (s *FileStore) Stat(ctx context.Context, name string) (Stat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stat(ctx, name)
}

func (s *FileStore) stat(ctx context.Context, name string) (Stat, error) {
	path, err := s.namePath(name)
	if err != nil {
		return Stat{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		logging.Ctx(ctx).Debug().Str("path", path).Err(err).Msg("File STAT 404")
		return Stat{}, NotFound(name, "")
	}
	if info.IsDir() {
		return Stat{}, NotFound(name, "is a directory")
	}

	mtime := ParseMTime(getXattr(path, xattrLastModified), info.ModTime())
	ftime := ParseMTime(getXattr(path, xattrLastFetched), mtime)

	logging.Ctx(ctx).Debug().Str("path", path).Msg("File STAT 200")
	return Stat{
		ContentType:  guessContentType(path),
		LastModified: mtime,
		LastFetched:  ftime,
		TTL:          NoExpiry,
		Size:         info.Size(),
	}, nil
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, name string) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stat, err := s.stat(ctx, name)
	if err != nil {
		return nil, err
	}
	path, err := s.namePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFound(name, "")
		}
		logging.Ctx(ctx).Error().Str("path", path).Err(err).Msg("Failed to read file")
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	logging.Ctx(ctx).Debug().Str("path", path).Int("size", len(data)).Msg("File GET 200")
	return NewObject(stat, data), nil
}

// Put implements Store. The file mtime is set to the object's last-modified
// time. Failing to write the extended attributes is logged, not returned.
func (s *FileStore) Put(ctx context.Context, name string, obj *Object) error {
	path, err := s.namePath(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}
	if err := os.WriteFile(path, obj.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if !obj.LastModified.IsZero() {
		if err := os.Chtimes(path, time.Now(), obj.LastModified); err != nil {
			return fmt.Errorf("set mtime of %s: %w", path, err)
		}
	}

	attrs := [][2]string{
		{xattrMimeType, obj.ContentType},
		{xattrLastModified, FormatMTime(obj.LastModified)},
		{xattrLastFetched, FormatMTime(obj.LastFetched)},
	}
	for _, attr := range attrs {
		if err := setXattr(path, attr[0], attr[1]); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("path", path).Str("xattr", attr[0]).Msg("Failed to set xattr")
		}
	}

	logging.Ctx(ctx).Debug().Str("path", path).Int("size", len(obj.Data)).Msg("File PUT 200")
	return nil
}

// guessContentType prefers the mime type xattr, then the file extension.
func guessContentType(path string) string {
	if mt := getXattr(path, xattrMimeType); mt != "" {
		return mt
	}
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}
	return DefaultContentType
}

// SingleFileStore maps every name to one fixed file.
type SingleFileStore struct {
	fileName string
	files    *FileStore
}

// NewSingleFileStore creates a store for the file at a path or file:// URL.
func NewSingleFileStore(file string) (*SingleFileStore, error) {
	if strings.HasPrefix(file, "file://") {
		p, err := ParseFileURL(file)
		if err != nil {
			return nil, err
		}
		file = p
	}
	if file == "" || strings.HasSuffix(file, string(filepath.Separator)) {
		return nil, fmt.Errorf("single file store: %q is not a file path", file)
	}
	files, err := NewFileStore(filepath.Dir(file))
	if err != nil {
		return nil, err
	}
	return &SingleFileStore{fileName: filepath.Base(file), files: files}, nil
}

// Stat implements Store.
func (s *SingleFileStore) Stat(ctx context.Context, _ string) (Stat, error) {
	return s.files.Stat(ctx, s.fileName)
}

// Get implements Store.
func (s *SingleFileStore) Get(ctx context.Context, _ string) (*Object, error) {
	return s.files.Get(ctx, s.fileName)
}

// Put implements Store.
func (s *SingleFileStore) Put(ctx context.Context, _ string, obj *Object) error {
	return s.files.Put(ctx, s.fileName, obj)
}

// NullStore holds nothing and accepts every write.
type NullStore struct{}

// Stat implements Store.
func (NullStore) Stat(_ context.Context, name string) (Stat, error) {
	return Stat{}, NotFound(name, "null store")
}

// Get implements Store.
func (NullStore) Get(_ context.Context, name string) (*Object, error) {
	return nil, NotFound(name, "null store")
}

// Put implements Store.
func (NullStore) Put(context.Context, string, *Object) error {
	return nil
}
