package urlstrategy

import (
	"fmt"
	"net/url"
	"strings"
)

const rawGitHubBaseURL = "https://raw.githubusercontent.com"

// RawGitHubStrategy points image URLs at raw.githubusercontent.com for the
// configured repository and branch.
type RawGitHubStrategy struct {
	Owner  string
	Repo   string
	Branch string
}

// NewRawGitHubStrategy creates a new raw GitHub URL strategy
func NewRawGitHubStrategy(owner, repo, branch string) *RawGitHubStrategy {
	if branch == "" {
		branch = "main"
	}
	return &RawGitHubStrategy{Owner: owner, Repo: repo, Branch: branch}
}

// ImageURL returns https://raw.githubusercontent.com/<owner>/<repo>/<branch>/<path>
func (s *RawGitHubStrategy) ImageURL(imagePath string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", rawGitHubBaseURL,
		url.PathEscape(s.Owner), url.PathEscape(s.Repo), url.PathEscape(s.Branch), escapePath(imagePath))
}

// CDNStrategy generates URLs that point directly at a CDN or static host
// serving the store contents.
type CDNStrategy struct {
	BaseURL string // e.g., "https://cdn.example.com/gallery"
}

// NewCDNStrategy creates a new CDN URL strategy
func NewCDNStrategy(baseURL string) *CDNStrategy {
	// Ensure baseURL doesn't have trailing slash
	return &CDNStrategy{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// ImageURL returns <base>/<path>
func (s *CDNStrategy) ImageURL(imagePath string) string {
	return s.BaseURL + "/" + escapePath(imagePath)
}

// escapePath escapes each segment of a slash separated store path.
func escapePath(p string) string {
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
