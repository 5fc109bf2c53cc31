package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-gallery/pkg/gallery/objectkey"
)

const (
	defaultListConcurrency = 8
	defaultEntryTimeout    = 10 * time.Second
	listCacheKey           = "images"
)

// service implements the Service interface
type service struct {
	store           Store
	eventSink       EventSink
	keys            KeyGenerator
	urls            URLStrategy
	maxUploadBytes  int64
	listConcurrency int
	entryTimeout    time.Duration
	listCacheTTL    time.Duration
	listCache       *cache.Cache
	now             func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithStore sets the content store for the service
func WithStore(store Store) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithKeyGenerator sets the image ID and filename generator
func WithKeyGenerator(keys KeyGenerator) Option {
	return func(s *service) {
		s.keys = keys
	}
}

// WithURLStrategy sets how public image URLs are built
func WithURLStrategy(urls URLStrategy) Option {
	return func(s *service) {
		s.urls = urls
	}
}

// WithMaxUploadBytes sets the largest accepted image binary
func WithMaxUploadBytes(n int64) Option {
	return func(s *service) {
		s.maxUploadBytes = n
	}
}

// WithListConcurrency bounds the number of concurrent metadata fetches
func WithListConcurrency(n int) Option {
	return func(s *service) {
		s.listConcurrency = n
	}
}

// WithEntryTimeout sets the per-entry fetch timeout used by ListImages
func WithEntryTimeout(d time.Duration) Option {
	return func(s *service) {
		s.entryTimeout = d
	}
}

// WithListCacheTTL caches the aggregate list for d. Zero disables caching.
func WithListCacheTTL(d time.Duration) Option {
	return func(s *service) {
		s.listCacheTTL = d
	}
}

// WithClock overrides the time source used for record dates
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		maxUploadBytes:  DefaultMaxUploadBytes,
		listConcurrency: defaultListConcurrency,
		entryTimeout:    defaultEntryTimeout,
		now:             time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if s.eventSink == nil {
		s.eventSink = NewNoopEventSink()
	}
	if s.keys == nil {
		s.keys = objectkey.NewTimeRandomGenerator()
	}
	if s.urls == nil {
		s.urls = pathURLStrategy{}
	}
	if s.maxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	if s.listConcurrency <= 0 {
		s.listConcurrency = defaultListConcurrency
	}
	if s.entryTimeout <= 0 {
		s.entryTimeout = defaultEntryTimeout
	}
	if s.listCacheTTL > 0 {
		s.listCache = cache.New(s.listCacheTTL, 2*s.listCacheTTL)
	}

	return s, nil
}

// List operations

func (s *service) ListImages(ctx context.Context) (*ListResult, error) {
	if s.listCache != nil {
		if cached, found := s.listCache.Get(listCacheKey); found {
			if result, ok := cached.(*ListResult); ok {
				slog.Debug("Image list cache hit", "count", result.Count)
				return result, nil
			}
		}
	}

	entries, err := s.store.List(ctx, MetadataDir)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrListFailed, err)
		}
		// A repository without a metadata directory is an empty gallery.
		entries = nil
	}

	var metadata []Entry
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name, MetadataExt) {
			metadata = append(metadata, entry)
		}
	}

	resolved := make([]*ImageRecord, len(metadata))
	var g errgroup.Group
	g.SetLimit(s.listConcurrency)
	for i, entry := range metadata {
		g.Go(func() error {
			record, err := s.fetchRecord(ctx, entry)
			if err != nil {
				slog.Warn("Dropping metadata entry", "path", entry.Path, "name", entry.Name, "error", err)
				return nil
			}
			resolved[i] = record
			return nil
		})
	}
	_ = g.Wait()

	images := make([]ImageRecord, 0, len(resolved))
	for _, record := range resolved {
		if record != nil {
			images = append(images, *record)
		}
	}
	slices.SortStableFunc(images, func(a, b ImageRecord) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	result := &ListResult{Count: len(images), Images: images}
	if dropped := len(metadata) - len(images); dropped > 0 {
		slog.Info("Image list resolved partially", "resolved", len(images), "dropped", dropped)
	}
	if s.listCache != nil {
		s.listCache.Set(listCacheKey, result, cache.DefaultExpiration)
	}
	return result, nil
}

// fetchRecord loads one metadata entry under its own timeout.
func (s *service) fetchRecord(ctx context.Context, entry Entry) (*ImageRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.entryTimeout)
	defer cancel()

	entryPath := entry.Path
	if entryPath == "" {
		entryPath = MetadataDir + "/" + entry.Name
	}
	data, err := s.store.Get(ctx, entryPath)
	if err != nil {
		return nil, err
	}
	var record ImageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if record.ID == "" {
		return nil, errors.New("metadata has no id")
	}
	return &record, nil
}

// Upload operations

func (s *service) UploadImage(ctx context.Context, req UploadImageRequest) (*UploadResult, error) {
	upload, err := normalizeUpload(req, s.maxUploadBytes)
	if err != nil {
		return nil, err
	}

	id := s.keys.GenerateID()
	filename := s.keys.Filename(id, upload.fileName, upload.contentType)
	imagePath := ImagePath(filename)

	// Step 1: binary commit
	if err := s.store.Put(ctx, imagePath, upload.data, "Add image: "+filename); err != nil {
		slog.Error("Image commit failed", "image_id", id, "path", imagePath, "error", err)
		return nil, &UploadError{ImageID: id, Phase: PhaseBinary, Err: err}
	}

	record := &ImageRecord{
		ID:          id,
		Filename:    filename,
		Title:       upload.title,
		Description: upload.description,
		Tags:        upload.tags,
		Category:    upload.category,
		AITool:      upload.aiTool,
		License:     upload.license,
		Date:        s.now().UTC().Truncate(time.Millisecond),
		URL:         s.urls.ImageURL(imagePath),
	}

	// Step 2: metadata commit. The binary is not rolled back on failure.
	body, err := json.MarshalIndent(record, "", "  ")
	if err == nil {
		err = s.store.Put(ctx, MetadataPath(id), body, "Add metadata: "+id)
	}
	if err != nil {
		slog.Error("Metadata commit failed, image binary orphaned", "image_id", id, "path", imagePath, "error", err)
		if sinkErr := s.eventSink.OrphanedBinary(ctx, imagePath, err); sinkErr != nil {
			slog.Warn("Event sink failed", "event", "orphaned_binary", "error", sinkErr)
		}
		return nil, &UploadError{ImageID: id, Phase: PhaseMetadata, Err: err}
	}

	if s.listCache != nil {
		s.listCache.Delete(listCacheKey)
	}
	if err := s.eventSink.ImageUploaded(ctx, record); err != nil {
		slog.Warn("Event sink failed", "event", "image_uploaded", "error", err)
	}

	return &UploadResult{ImageID: id, Record: record}, nil
}

// Download operations

func (s *service) GetImage(ctx context.Context, id string) (*ImageRecord, error) {
	if err := ValidateImageID(id); err != nil {
		return nil, err
	}

	data, err := s.store.Get(ctx, MetadataPath(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, id)
		}
		return nil, err
	}

	var record ImageRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for image %s: %w", id, err)
	}
	return &record, nil
}

func (s *service) DownloadImage(ctx context.Context, id string) (*DownloadResult, error) {
	record, err := s.GetImage(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.Filename == "" || path.Base(record.Filename) != record.Filename || record.Filename == ".." {
		return nil, fmt.Errorf("%w: image %s has an invalid filename %q", ErrDownloadFailed, id, record.Filename)
	}

	data, err := s.store.Get(ctx, record.ImagePath())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	// Best effort, never delays the response.
	go func(ctx context.Context) {
		if err := s.eventSink.ImageDownloaded(ctx, record); err != nil {
			slog.Warn("Event sink failed", "event", "image_downloaded", "error", err)
		}
	}(context.WithoutCancel(ctx))

	return &DownloadResult{
		Record:      record,
		ContentType: contentTypeFor(record.Filename, data),
		Data:        data,
	}, nil
}

func (s *service) GetImageFile(ctx context.Context, filename string) (*DownloadResult, error) {
	if !filenamePattern.MatchString(filename) {
		return nil, &ValidationError{Field: "filename", Message: fmt.Sprintf("invalid image filename %q", filename)}
	}

	data, err := s.store.Get(ctx, path.Join(ImagesDir, filename))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, filename)
		}
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	return &DownloadResult{
		ContentType: contentTypeFor(filename, data),
		Data:        data,
	}, nil
}

func contentTypeFor(filename string, data []byte) string {
	if ct := mime.TypeByExtension(path.Ext(filename)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// pathURLStrategy points at the server's own file route.
type pathURLStrategy struct{}

func (pathURLStrategy) ImageURL(imagePath string) string {
	return FilesPathPrefix + "/" + imagePath
}
