package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

// Backend is a filesystem implementation of the gallery.Store interface.
// Paths are resolved under BaseDir; commit messages are only logged.
type Backend struct {
	mu      sync.RWMutex
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	// Validate and create base directory if it doesn't exist
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: baseDir}, nil
}

// Get reads the file stored at p
func (b *Backend) Get(ctx context.Context, p string) ([]byte, error) {
	filePath, err := b.resolve(p)
	if err != nil {
		return nil, b.storageError("get", p, err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, b.storageError("get", p, gallery.ErrNotFound)
	} else if err != nil {
		return nil, b.storageError("get", p, fmt.Errorf("failed to read file: %w", err))
	}
	return data, nil
}

// Put creates the file at p. An existing file is never overwritten.
func (b *Backend) Put(ctx context.Context, p string, data []byte, message string) error {
	filePath, err := b.resolve(p)
	if err != nil {
		return b.storageError("put", p, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Create directory structure if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return b.storageError("put", p, fmt.Errorf("failed to create directory: %w", err))
	}

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return b.storageError("put", p, gallery.ErrConflict)
	} else if err != nil {
		return b.storageError("put", p, fmt.Errorf("failed to create file: %w", err))
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(filePath)
		return b.storageError("put", p, fmt.Errorf("failed to write file: %w", err))
	}
	if err := file.Close(); err != nil {
		os.Remove(filePath)
		return b.storageError("put", p, fmt.Errorf("failed to close file: %w", err))
	}

	slog.Debug("Filesystem commit", "path", p, "message", message)
	return nil
}

// List returns the regular files directly under dir, sorted by name
func (b *Backend) List(ctx context.Context, dir string) ([]gallery.Entry, error) {
	dirPath, err := b.resolve(dir)
	if err != nil {
		return nil, b.storageError("list", dir, err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	items, err := os.ReadDir(dirPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, b.storageError("list", dir, gallery.ErrNotFound)
	} else if err != nil {
		return nil, b.storageError("list", dir, fmt.Errorf("failed to read directory: %w", err))
	}

	rel := strings.Trim(filepath.ToSlash(strings.TrimPrefix(dirPath, b.baseDir)), "/")
	entries := make([]gallery.Entry, 0, len(items))
	for _, item := range items {
		if !item.Type().IsRegular() {
			continue
		}
		entryPath := item.Name()
		if rel != "" {
			entryPath = rel + "/" + item.Name()
		}
		entries = append(entries, gallery.Entry{
			Name:        item.Name(),
			Path:        entryPath,
			DownloadURL: (&url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(dirPath, item.Name()))}).String(),
		})
	}

	slices.SortFunc(entries, func(x, y gallery.Entry) int {
		return strings.Compare(x.Name, y.Name)
	})
	return entries, nil
}

// resolve maps a store path to a file under baseDir, rejecting anything
// that would escape it.
func (b *Backend) resolve(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty path")
	}
	filePath := filepath.Join(b.baseDir, filepath.FromSlash(p))
	rel, err := filepath.Rel(b.baseDir, filePath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes base directory", p)
	}
	return filePath, nil
}

func (b *Backend) storageError(op, p string, err error) error {
	return &gallery.StorageError{Backend: "fs", Path: p, Op: op, Err: err}
}
