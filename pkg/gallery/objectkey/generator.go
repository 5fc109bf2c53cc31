package objectkey

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator produces image identifiers and store filenames.
type Generator interface {
	// GenerateID returns a new image identifier
	GenerateID() string
	// Filename returns the store filename for id, keeping the extension of
	// the uploaded file
	Filename(id, originalName, contentType string) string
}

// TimeRandomGenerator creates IDs of the form <unix-millis>-<8 hex chars>.
// The timestamp keeps IDs roughly creation ordered, the random suffix keeps
// concurrent uploads within the same millisecond apart.
type TimeRandomGenerator struct {
	Now func() time.Time
}

func NewTimeRandomGenerator() *TimeRandomGenerator {
	return &TimeRandomGenerator{Now: time.Now}
}

func (g *TimeRandomGenerator) GenerateID() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	random := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%d-%s", now().UnixMilli(), random[:8])
}

func (g *TimeRandomGenerator) Filename(id, originalName, contentType string) string {
	return id + Extension(originalName, contentType)
}

// UUIDv7Generator creates RFC 9562 version 7 UUIDs, which embed the creation
// time in their leading bits.
type UUIDv7Generator struct{}

func NewUUIDv7Generator() *UUIDv7Generator {
	return &UUIDv7Generator{}
}

func (g *UUIDv7Generator) GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (g *UUIDv7Generator) Filename(id, originalName, contentType string) string {
	return id + Extension(originalName, contentType)
}

var contentTypeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Extension returns the lower-cased extension of originalName, or the
// canonical extension of contentType when the name has none usable.
func Extension(originalName, contentType string) string {
	ext := strings.ToLower(path.Ext(sanitizeFilename(originalName)))
	if isSafeExtension(ext) {
		return ext
	}
	if ext, ok := contentTypeExtensions[contentType]; ok {
		return ext
	}
	return ""
}

func isSafeExtension(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// Helper functions for path sanitization
func sanitizeFilename(filename string) string {
	// Replace problematic characters for filesystem compatibility
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(filename)
}

// Generator names accepted by New
const (
	TimeRandom = "time-random"
	UUIDv7     = "uuidv7"
)

// New returns the generator registered under name. An empty name selects
// TimeRandom.
func New(name string) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TimeRandom:
		return NewTimeRandomGenerator(), nil
	case UUIDv7:
		return NewUUIDv7Generator(), nil
	}
	return nil, fmt.Errorf("unknown id generator %q (use %s or %s)", name, TimeRandom, UUIDv7)
}
