package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

const baseURL = "http://gallery.test"

func setupClient(t *testing.T, opts ...ClientOption) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	opts = append([]ClientOption{WithHTTPClient(&http.Client{Transport: transport})}, opts...)
	return NewClient(baseURL+"/", opts...), transport
}

func TestListImages(t *testing.T) {
	c, transport := setupClient(t)
	date := time.Date(2024, 6, 10, 6, 13, 20, 0, time.UTC)
	transport.RegisterResponder(http.MethodGet, baseURL+"/list",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"success": true,
			"count":   1,
			"images": []map[string]any{
				{"id": "1718000000000-abcd1234", "title": "Sunset", "category": "landscape", "date": date.Format(time.RFC3339), "tags": []string{"sky"}},
			},
		}))

	result, err := c.ListImages(t.Context())
	require.NoError(t, err)

	require.Equal(t, 1, result.Count)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "Sunset", result.Images[0].Title)
	assert.Equal(t, []string{"sky"}, result.Images[0].Tags)
	assert.True(t, date.Equal(result.Images[0].Date))
}

func TestListImagesFailure(t *testing.T) {
	c, transport := setupClient(t)
	transport.RegisterResponder(http.MethodGet, baseURL+"/list",
		httpmock.NewJsonResponderOrPanic(http.StatusInternalServerError, map[string]any{
			"error":   "Failed to fetch images",
			"message": "upstream unavailable",
			"images":  []any{},
		}))

	_, err := c.ListImages(t.Context())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "Failed to fetch images", apiErr.ErrorText)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestNetlifyPaths(t *testing.T) {
	c, transport := setupClient(t, WithPaths(NetlifyPaths))
	transport.RegisterResponder(http.MethodGet, baseURL+"/.netlify/functions/github-list",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"success": true, "count": 0, "images": nil}))

	result, err := c.ListImages(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Images)
}

func TestUpload(t *testing.T) {
	c, transport := setupClient(t)
	image := []byte("\x89PNG\r\n\x1a\nimage")

	transport.RegisterResponder(http.MethodPost, baseURL+"/upload",
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
			}
			file, header, err := req.FormFile("image")
			if err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
			}
			defer file.Close()
			data, _ := io.ReadAll(file)

			assert.Equal(t, "Sunset", req.FormValue("title"))
			assert.Equal(t, "sky,sea", req.FormValue("tags"))
			assert.Equal(t, "landscape", req.FormValue("category"))
			assert.Equal(t, "cc0", req.FormValue("license"))
			assert.Equal(t, `sun "set".png`, header.Filename)
			assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
			assert.Equal(t, image, data)

			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"success": true,
				"imageId": "1718000000000-abcd1234",
				"message": "Image uploaded successfully",
			})
		})

	id, err := c.Upload(t.Context(), UploadRequest{
		Title:       "Sunset",
		Tags:        []string{"sky", "sea"},
		Category:    "landscape",
		License:     "cc0",
		FileName:    `sun "set".png`,
		ContentType: "image/png",
		Data:        bytes.NewReader(image),
	})
	require.NoError(t, err)
	assert.Equal(t, "1718000000000-abcd1234", id)
}

func TestUploadRejected(t *testing.T) {
	c, transport := setupClient(t)
	transport.RegisterResponder(http.MethodPost, baseURL+"/upload",
		httpmock.NewJsonResponderOrPanic(http.StatusBadRequest, map[string]any{"error": "invalid title: is required"}))

	_, err := c.Upload(t.Context(), UploadRequest{Data: bytes.NewReader([]byte("x"))})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gallery.ErrInvalidInput))
	assert.Contains(t, err.Error(), "invalid title")
}

func TestUploadWithoutData(t *testing.T) {
	c, transport := setupClient(t)

	_, err := c.Upload(t.Context(), UploadRequest{Title: "Empty"})
	assert.Error(t, err)
	assert.Zero(t, transport.GetTotalCallCount())
}

func TestDownload(t *testing.T) {
	c, transport := setupClient(t)
	image := []byte("GIF89a-bytes")

	transport.RegisterResponder(http.MethodPost, baseURL+"/download",
		func(req *http.Request) (*http.Response, error) {
			var body map[string]string
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				return nil, err
			}
			assert.Equal(t, "1718000000000-abcd1234", body["imageId"])

			resp := httpmock.NewBytesResponse(http.StatusOK, image)
			resp.Header.Set("Content-Type", "image/gif")
			resp.Header.Set("Content-Disposition", `attachment; filename="1718000000000-abcd1234.gif"`)
			return resp, nil
		})

	download, err := c.Download(t.Context(), "1718000000000-abcd1234")
	require.NoError(t, err)
	assert.Equal(t, image, download.Data)
	assert.Equal(t, "image/gif", download.ContentType)
	assert.Equal(t, "1718000000000-abcd1234.gif", download.Filename)
}

func TestDownloadNotFound(t *testing.T) {
	c, transport := setupClient(t)
	transport.RegisterResponder(http.MethodPost, baseURL+"/download",
		httpmock.NewJsonResponderOrPanic(http.StatusNotFound, map[string]any{"error": "Image not found"}))

	_, err := c.Download(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gallery.ErrImageNotFound))
}

func TestGetImage(t *testing.T) {
	c, transport := setupClient(t)
	transport.RegisterResponder(http.MethodGet, baseURL+"/images/1718000000000-abcd1234",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"id": "1718000000000-abcd1234", "filename": "1718000000000-abcd1234.png"}))

	record, err := c.GetImage(t.Context(), "1718000000000-abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "1718000000000-abcd1234.png", record.Filename)
}

func TestPlainTextError(t *testing.T) {
	c, transport := setupClient(t)
	transport.RegisterResponder(http.MethodGet, baseURL+"/list",
		httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway\n"))

	_, err := c.ListImages(t.Context())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad gateway", apiErr.ErrorText)
	assert.False(t, errors.Is(err, gallery.ErrImageNotFound))
}

func TestWithTimeoutKeepsTransport(t *testing.T) {
	transport := httpmock.NewMockTransport()
	shared := &http.Client{Transport: transport}

	c := NewClient(baseURL, WithHTTPClient(shared), WithTimeout(time.Second))

	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.Same(t, transport, c.httpClient.Transport)
	assert.Zero(t, shared.Timeout)
}
