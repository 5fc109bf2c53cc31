package gallery

import "time"

// Store layout.
const (
	ImagesDir     = "images"
	MetadataDir   = "metadata"
	MetadataExt   = ".json"
	DefaultBranch = "main"
)

// FilesPathPrefix is the HTTP path under which image binaries are served
// when the store has no public URL of its own.
const FilesPathPrefix = "/files"

// DefaultMaxUploadBytes is the largest accepted image binary (50 MiB).
const DefaultMaxUploadBytes int64 = 52428800

// Upload form limits.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Defaults applied to empty upload fields.
const (
	DefaultCategory = "other"
	DefaultLicense  = "cc0"
)

// AllowedContentTypes lists the image types accepted by UploadImage.
var AllowedContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
}

// AllowedLicenses lists the licenses an uploader may pick.
var AllowedLicenses = []string{
	"cc0",
	"cc-by",
	"cc-by-sa",
	"cc-by-nc",
	"all-rights-reserved",
}

// ImageRecord is the metadata sidecar of one stored image. Records are
// written once by UploadImage and never updated in place.
type ImageRecord struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	AITool      string    `json:"aiTool"`
	License     string    `json:"license"`
	Date        time.Time `json:"date"`
	URL         string    `json:"url"`

	// Optional display fields, absent unless populated out of band.
	Dimensions string `json:"dimensions,omitempty"`
	Format     string `json:"format,omitempty"`
	Downloads  *int   `json:"downloads,omitempty"`
}

// DownloadCount returns Downloads, treating an absent value as zero.
func (r ImageRecord) DownloadCount() int {
	if r.Downloads == nil {
		return 0
	}
	return *r.Downloads
}

// ImagePath returns the store path of the record's binary.
func (r ImageRecord) ImagePath() string {
	return ImagePath(r.Filename)
}

// ImagePath returns the store path for an image filename.
func ImagePath(filename string) string {
	return ImagesDir + "/" + filename
}

// MetadataPath returns the store path of the metadata entry for id.
func MetadataPath(id string) string {
	return MetadataDir + "/" + id + MetadataExt
}

// Entry is one item of a store directory listing.
type Entry struct {
	Name        string
	Path        string
	DownloadURL string
}
