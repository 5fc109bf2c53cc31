package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

// Config options for the GitHub content backend
type Config struct {
	Owner   string // Repository owner
	Repo    string // Repository name
	Branch  string // Ref for reads and writes (default: main)
	Token   string // Token with contents read/write permission
	BaseURL string // Optional API base URL for GitHub Enterprise or tests

	// HTTPClient overrides the transport used for API and raw downloads
	HTTPClient *http.Client
}

// Backend stores gallery content in a GitHub repository through the
// contents API. Every Put is its own commit on Branch.
type Backend struct {
	client *github.Client
	owner  string
	repo   string
	branch string
}

// New creates a new GitHub content backend
func New(config Config) (*Backend, error) {
	if config.Owner == "" {
		return nil, errors.New("repository owner is required")
	}
	if config.Repo == "" {
		return nil, errors.New("repository name is required")
	}
	if config.Branch == "" {
		config.Branch = gallery.DefaultBranch
	}

	client := github.NewClient(config.HTTPClient)
	if config.Token != "" {
		client = client.WithAuthToken(config.Token)
	}
	if config.BaseURL != "" {
		baseURL, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		client.BaseURL = baseURL
	}

	return &Backend{
		client: client,
		owner:  config.Owner,
		repo:   config.Repo,
		branch: config.Branch,
	}, nil
}

// Get returns the decoded content of the file at p on the configured branch.
// Files too large for inline content are fetched from their download URL.
func (b *Backend) Get(ctx context.Context, p string) ([]byte, error) {
	file, dir, resp, err := b.client.Repositories.GetContents(ctx, b.owner, b.repo, p,
		&github.RepositoryContentGetOptions{Ref: b.branch})
	if err != nil {
		return nil, b.storageError("get", p, classify(resp, err))
	}
	if file == nil {
		return nil, b.storageError("get", p, fmt.Errorf("path is a directory with %d entries", len(dir)))
	}

	if data, ok, err := decodeContent(file); err != nil {
		return nil, b.storageError("get", p, err)
	} else if ok {
		return data, nil
	}

	data, err := b.download(ctx, file.GetDownloadURL())
	if err != nil {
		return nil, b.storageError("get", p, err)
	}
	return data, nil
}

// Put creates the file at p with one commit. The contents API refuses to
// create a file that already exists without its blob SHA, which surfaces as
// gallery.ErrConflict.
func (b *Backend) Put(ctx context.Context, p string, data []byte, message string) error {
	_, resp, err := b.client.Repositories.CreateFile(ctx, b.owner, b.repo, p, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: data,
		Branch:  github.String(b.branch),
	})
	if err != nil {
		return b.storageError("put", p, classify(resp, err))
	}
	return nil
}

// List returns the files directly under dir. Subdirectories are skipped.
func (b *Backend) List(ctx context.Context, dir string) ([]gallery.Entry, error) {
	file, contents, resp, err := b.client.Repositories.GetContents(ctx, b.owner, b.repo, strings.Trim(dir, "/"),
		&github.RepositoryContentGetOptions{Ref: b.branch})
	if err != nil {
		return nil, b.storageError("list", dir, classify(resp, err))
	}
	if file != nil {
		return nil, b.storageError("list", dir, errors.New("path is a file"))
	}

	entries := make([]gallery.Entry, 0, len(contents))
	for _, item := range contents {
		if item.GetType() != "file" {
			continue
		}
		entries = append(entries, gallery.Entry{
			Name:        item.GetName(),
			Path:        item.GetPath(),
			DownloadURL: item.GetDownloadURL(),
		})
	}
	return entries, nil
}

// download fetches a raw file through the authenticated client
func (b *Backend) download(ctx context.Context, downloadURL string) ([]byte, error) {
	if downloadURL == "" {
		return nil, errors.New("file has no inline content and no download URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := b.client.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, gallery.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read download body: %w", err)
	}
	return data, nil
}

// decodeContent returns the inline content of file. ok is false when the
// API left the content out, which happens for files over 1 MB.
func decodeContent(file *github.RepositoryContent) (data []byte, ok bool, err error) {
	var content string
	if file.Content != nil {
		content = *file.Content
	}
	switch file.GetEncoding() {
	case "base64":
		if content == "" && file.GetSize() > 0 {
			return nil, false, nil
		}
		// The API wraps base64 content at 60 columns; the decoder skips newlines.
		data, err = base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, false, fmt.Errorf("failed to decode content: %w", err)
		}
		return data, true, nil
	case "":
		if content == "" && file.GetSize() > 0 {
			return nil, false, nil
		}
		return []byte(content), true, nil
	case "none":
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("unsupported content encoding %q", file.GetEncoding())
	}
}

// classify maps contents API status codes onto the gallery store sentinels
func classify(resp *github.Response, err error) error {
	if resp == nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", gallery.ErrNotFound, err)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", gallery.ErrConflict, err)
	}
	return err
}

func (b *Backend) storageError(op, p string, err error) error {
	return &gallery.StorageError{Backend: "github", Path: p, Op: op, Err: err}
}
