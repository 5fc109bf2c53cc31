package gallery

// UploadImageRequest carries the fields of an upload form.
type UploadImageRequest struct {
	Title       string
	Description string
	Tags        string // comma separated
	Category    string
	AITool      string
	License     string

	FileName    string
	ContentType string
	// Size is the declared part size; when zero len(Data) is used.
	Size int64
	Data []byte
}

// UploadResult is returned by a successful UploadImage.
type UploadResult struct {
	ImageID string
	Record  *ImageRecord
}

// ListResult is the aggregate of every resolvable metadata entry.
type ListResult struct {
	Count  int
	Images []ImageRecord
}

// DownloadResult is an image binary together with its record.
type DownloadResult struct {
	Record      *ImageRecord
	ContentType string
	Data        []byte
}
