// Package client talks to the gallery HTTP surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

// Paths are the endpoint paths of a gallery server.
type Paths struct {
	List     string
	Upload   string
	Download string
	Image    string // prefix, the image ID is appended
}

// DefaultPaths are served by the gallery router.
var DefaultPaths = Paths{
	List:     "/list",
	Upload:   "/upload",
	Download: "/download",
	Image:    "/images/",
}

// NetlifyPaths address a deployment that only exposes the function routes.
var NetlifyPaths = Paths{
	List:     "/.netlify/functions/github-list",
	Upload:   "/.netlify/functions/github-upload",
	Download: "/.netlify/functions/github-download",
	Image:    "/images/",
}

// Client calls the list, upload and download endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
	paths      Paths
}

// ClientOption is a functional option for configuring a Client
type ClientOption func(*Client)

// NewClient creates a client for the gallery served at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		paths: DefaultPaths,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each request, including reading the response body
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithPaths overrides the endpoint paths
func WithPaths(paths Paths) ClientOption {
	return func(c *Client) {
		c.paths = paths
	}
}

// APIError is a non-2xx response from the gallery
type APIError struct {
	StatusCode int
	ErrorText  string `json:"error"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gallery responded %d: %s: %s", e.StatusCode, e.ErrorText, e.Message)
	}
	return fmt.Sprintf("gallery responded %d: %s", e.StatusCode, e.ErrorText)
}

// Unwrap maps the status onto the gallery sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return gallery.ErrInvalidInput
	case http.StatusNotFound:
		return gallery.ErrImageNotFound
	}
	return nil
}

type listResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Images  []gallery.ImageRecord `json:"images"`
}

// ListImages fetches the aggregate image list
func (c *Client) ListImages(ctx context.Context) (*gallery.ListResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.paths.List, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var body listResponse
	if err := c.doJSON(req, &body); err != nil {
		return nil, err
	}
	if body.Images == nil {
		body.Images = []gallery.ImageRecord{}
	}
	return &gallery.ListResult{Count: body.Count, Images: body.Images}, nil
}

// GetImage fetches the metadata record of one image
func (c *Client) GetImage(ctx context.Context, id string) (*gallery.ImageRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.paths.Image+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var record gallery.ImageRecord
	if err := c.doJSON(req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UploadRequest is one image and its descriptive fields
type UploadRequest struct {
	Title       string
	Description string
	Tags        []string
	Category    string
	AITool      string
	License     string

	FileName    string
	ContentType string
	Data        io.Reader
}

type uploadResponse struct {
	Success bool   `json:"success"`
	ImageID string `json:"imageId"`
	Message string `json:"message"`
}

// Upload posts the image as a multipart form and returns the new image ID
func (c *Client) Upload(ctx context.Context, upload UploadRequest) (string, error) {
	if upload.Data == nil {
		return "", errors.New("upload data is required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct{ name, value string }{
		{"title", upload.Title},
		{"description", upload.Description},
		{"tags", strings.Join(upload.Tags, ",")},
		{"category", upload.Category},
		{"aiTool", upload.AITool},
		{"license", upload.License},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(upload.FileName)))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := io.Copy(part, upload.Data); err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.paths.Upload, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var body uploadResponse
	if err := c.doJSON(req, &body); err != nil {
		return "", err
	}
	if body.ImageID == "" {
		return "", errors.New("upload response carried no image ID")
	}
	return body.ImageID, nil
}

// Download is a fetched image binary
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Download fetches the binary of image id
func (c *Client) Download(ctx context.Context, id string) (*Download, error) {
	payload, err := json.Marshal(map[string]string{"imageId": id})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.paths.Download, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	download := &Download{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		download.Filename = params["filename"]
	}
	return download, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.ErrorText == "" {
		apiErr.ErrorText = strings.TrimSpace(string(body))
		if apiErr.ErrorText == "" {
			apiErr.ErrorText = resp.Status
		}
	}
	return apiErr
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
