package gallery

import "context"

// NoopEventSink is a no-operation implementation of EventSink
// Useful for testing or when no event handling is needed
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// ImageUploaded does nothing and returns nil
func (n *NoopEventSink) ImageUploaded(ctx context.Context, record *ImageRecord) error {
	return nil
}

// ImageDownloaded does nothing and returns nil
func (n *NoopEventSink) ImageDownloaded(ctx context.Context, record *ImageRecord) error {
	return nil
}

// OrphanedBinary does nothing and returns nil
func (n *NoopEventSink) OrphanedBinary(ctx context.Context, imagePath string, cause error) error {
	return nil
}
