package gallery

import (
	"context"

	"github.com/tendant/simple-gallery/pkg/gallery/objectkey"
)

// Store is the remote content store: a path to bytes key-value store where
// every write is a commit.
type Store interface {
	// Get returns the content at path, or an error wrapping ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// Put writes data at path as a single commit. Writing over an existing
	// path fails with an error wrapping ErrConflict.
	Put(ctx context.Context, path string, data []byte, message string) error

	// List returns the file entries directly under dir.
	List(ctx context.Context, dir string) ([]Entry, error)
}

// EventSink receives gallery lifecycle events. Implementations must not
// block for long; download events are delivered asynchronously.
type EventSink interface {
	// ImageUploaded is fired after both upload commits succeeded
	ImageUploaded(ctx context.Context, record *ImageRecord) error

	// ImageDownloaded is fired after a binary was served
	ImageDownloaded(ctx context.Context, record *ImageRecord) error

	// OrphanedBinary is fired when the binary commit succeeded but the
	// metadata commit did not
	OrphanedBinary(ctx context.Context, imagePath string, cause error) error
}

// KeyGenerator produces image identifiers and store filenames.
type KeyGenerator = objectkey.Generator

// URLStrategy builds the public retrieval URL stored in ImageRecord.URL.
type URLStrategy interface {
	ImageURL(imagePath string) string
}

// Service is the gallery's list/upload/download surface.
type Service interface {
	// ListImages returns every metadata entry that could be resolved
	ListImages(ctx context.Context) (*ListResult, error)

	// GetImage returns the record for id
	GetImage(ctx context.Context, id string) (*ImageRecord, error)

	// UploadImage validates the request and writes binary then metadata
	UploadImage(ctx context.Context, req UploadImageRequest) (*UploadResult, error)

	// DownloadImage resolves id to its record and fetches the binary
	DownloadImage(ctx context.Context, id string) (*DownloadResult, error)

	// GetImageFile fetches the binary stored under filename in the images
	// directory. Record is nil in the result.
	GetImageFile(ctx context.Context, filename string) (*DownloadResult, error)
}
