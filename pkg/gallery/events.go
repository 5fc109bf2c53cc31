package gallery

import (
	"context"
	"log/slog"
)

// LoggingEventSink writes gallery events to a slog.Logger.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink returns an EventSink backed by logger, or by
// slog.Default when logger is nil.
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (s *LoggingEventSink) ImageUploaded(ctx context.Context, record *ImageRecord) error {
	s.logger.InfoContext(ctx, "Image uploaded",
		"image_id", record.ID,
		"filename", record.Filename,
		"category", record.Category)
	return nil
}

func (s *LoggingEventSink) ImageDownloaded(ctx context.Context, record *ImageRecord) error {
	s.logger.InfoContext(ctx, "Image downloaded", "image_id", record.ID, "title", record.Title)
	return nil
}

func (s *LoggingEventSink) OrphanedBinary(ctx context.Context, imagePath string, cause error) error {
	s.logger.ErrorContext(ctx, "Orphaned image binary", "path", imagePath, "error", cause)
	return nil
}
