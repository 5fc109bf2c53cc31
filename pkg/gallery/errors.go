package gallery

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrInvalidInput indicates a missing or invalid request field
	ErrInvalidInput = errors.New("invalid input")

	// ErrImageNotFound indicates no metadata entry exists for an image ID
	ErrImageNotFound = errors.New("image not found")

	// ErrNotFound indicates a store path does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a store write collided with an existing entry
	ErrConflict = errors.New("conflict")

	// ErrListFailed indicates the metadata directory could not be listed
	ErrListFailed = errors.New("list failed")

	// ErrUploadFailed indicates an upload commit failed
	ErrUploadFailed = errors.New("upload failed")

	// ErrDownloadFailed indicates the image binary could not be fetched
	ErrDownloadFailed = errors.New("download failed")
)

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// StorageError represents an error related to store operations
type StorageError struct {
	Backend string
	Path    string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for path %s on backend %s: %v", e.Op, e.Path, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UploadPhase names a step of the two-commit upload.
type UploadPhase string

const (
	PhaseBinary   UploadPhase = "binary"
	PhaseMetadata UploadPhase = "metadata"
)

// UploadError reports which upload commit failed. A PhaseMetadata error
// means the binary commit already landed and is now orphaned.
type UploadError struct {
	ImageID string
	Phase   UploadPhase
	Err     error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of image %s failed at %s commit: %v", e.ImageID, e.Phase, e.Err)
}

func (e *UploadError) Unwrap() []error {
	return []error{ErrUploadFailed, e.Err}
}

// Orphaned reports whether the failure left a binary without metadata.
func (e *UploadError) Orphaned() bool {
	return e.Phase == PhaseMetadata
}
