package gallery

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var (
	imageIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}(\.[A-Za-z0-9]{1,8})?$`)
)

// ValidateImageID rejects identifiers that could address anything other
// than a single metadata entry.
func ValidateImageID(id string) error {
	if id == "" {
		return &ValidationError{Field: "imageId", Message: "is required"}
	}
	if !imageIDPattern.MatchString(id) {
		return &ValidationError{Field: "imageId", Message: "contains unsupported characters"}
	}
	return nil
}

// normalizedUpload is an UploadImageRequest after validation and defaulting.
type normalizedUpload struct {
	title       string
	description string
	tags        []string
	category    string
	aiTool      string
	license     string
	fileName    string
	contentType string
	data        []byte
}

// normalizeUpload validates req against maxBytes. It never touches the store.
func normalizeUpload(req UploadImageRequest, maxBytes int64) (*normalizedUpload, error) {
	size := req.Size
	if size == 0 {
		size = int64(len(req.Data))
	}
	if size == 0 || len(req.Data) == 0 {
		return nil, &ValidationError{Field: "image", Message: "no image provided"}
	}
	if size > maxBytes || int64(len(req.Data)) > maxBytes {
		return nil, &ValidationError{Field: "image", Message: fmt.Sprintf("exceeds maximum size of %d bytes", maxBytes)}
	}

	contentType := detectImageType(req.ContentType, req.Data)
	if !slices.Contains(AllowedContentTypes, contentType) {
		return nil, &ValidationError{Field: "image", Message: fmt.Sprintf("unsupported content type %q", contentType)}
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, &ValidationError{Field: "title", Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}

	description := strings.TrimSpace(req.Description)
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, &ValidationError{Field: "description", Message: fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)}
	}

	license := strings.ToLower(strings.TrimSpace(req.License))
	if license == "" {
		license = DefaultLicense
	}
	if !slices.Contains(AllowedLicenses, license) {
		return nil, &ValidationError{Field: "license", Message: fmt.Sprintf("must be one of %s", strings.Join(AllowedLicenses, ", "))}
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = DefaultCategory
	}

	return &normalizedUpload{
		title:       title,
		description: description,
		tags:        SplitTags(req.Tags),
		category:    category,
		aiTool:      strings.TrimSpace(req.AITool),
		license:     license,
		fileName:    req.FileName,
		contentType: contentType,
		data:        req.Data,
	}, nil
}

// SplitTags splits a comma separated tag list, dropping blanks and
// case-insensitive duplicates. The result is never nil.
func SplitTags(raw string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// detectImageType trusts the declared type unless it is missing or generic,
// in which case the payload is sniffed.
func detectImageType(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}
