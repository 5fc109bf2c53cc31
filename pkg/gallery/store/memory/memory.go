package memory

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

// Commit records one write made to the store.
type Commit struct {
	Path    string
	Message string
}

// Backend is an in-memory implementation of the gallery.Store interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	commits []Commit
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

// Get returns a copy of the content stored at p
func (b *Backend) Get(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[clean(p)]
	if !exists {
		return nil, b.storageError("get", p, gallery.ErrNotFound)
	}
	return slices.Clone(data), nil
}

// Put stores data at p, refusing to overwrite an existing entry
func (b *Backend) Put(ctx context.Context, p string, data []byte, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := clean(p)
	if key == "" || strings.HasSuffix(p, "/") {
		return b.storageError("put", p, fmt.Errorf("invalid path"))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; exists {
		return b.storageError("put", p, gallery.ErrConflict)
	}
	b.objects[key] = slices.Clone(data)
	b.commits = append(b.commits, Commit{Path: key, Message: message})
	return nil
}

// List returns the files directly under dir, sorted by name
func (b *Backend) List(ctx context.Context, dir string) ([]gallery.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := clean(dir) + "/"

	b.mu.RLock()
	defer b.mu.RUnlock()

	var entries []gallery.Entry
	found := false
	for key := range b.objects {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		found = true
		if strings.Contains(rest, "/") {
			continue
		}
		entries = append(entries, gallery.Entry{
			Name:        rest,
			Path:        key,
			DownloadURL: "memory://" + key,
		})
	}
	if !found {
		return nil, b.storageError("list", dir, gallery.ErrNotFound)
	}

	slices.SortFunc(entries, func(x, y gallery.Entry) int {
		return strings.Compare(x.Name, y.Name)
	})
	return entries, nil
}

// Commits returns every successful write in order
func (b *Backend) Commits() []Commit {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.commits)
}

func (b *Backend) storageError(op, p string, err error) error {
	return &gallery.StorageError{Backend: "memory", Path: p, Op: op, Err: err}
}

func clean(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
