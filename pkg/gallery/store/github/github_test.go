package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

const (
	testAPI      = "https://api.github.test"
	contentsPath = testAPI + "/repos/octo/gallery/contents/"
)

func setupHTTPMock(t *testing.T) (*Backend, *httpmock.MockTransport) {
	t.Helper()
	mock := httpmock.NewMockTransport()
	backend, err := New(Config{
		Owner:      "octo",
		Repo:       "gallery",
		Token:      "t0ken",
		BaseURL:    testAPI,
		HTTPClient: &http.Client{Transport: mock},
	})
	require.NoError(t, err)
	return backend, mock
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Repo: "gallery"})
	assert.ErrorContains(t, err, "owner is required")

	_, err = New(Config{Owner: "octo"})
	assert.ErrorContains(t, err, "name is required")

	backend, err := New(Config{Owner: "octo", Repo: "gallery"})
	require.NoError(t, err)
	assert.Equal(t, "main", backend.branch)
	assert.Equal(t, "https://api.github.com/", backend.client.BaseURL.String())
}

func TestGet_DecodesBase64Content(t *testing.T) {
	backend, mock := setupHTTPMock(t)

	payload := `{"id":"1718000000123-abcd1234","title":"Sunset"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(payload))
	// The contents API wraps base64 at 60 columns
	wrapped := encoded[:20] + "\n" + encoded[20:] + "\n"

	var auth string
	mock.RegisterResponderWithQuery(http.MethodGet, contentsPath+"metadata/1718000000123-abcd1234.json", "ref=main",
		func(req *http.Request) (*http.Response, error) {
			auth = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
				"type":     "file",
				"encoding": "base64",
				"name":     "1718000000123-abcd1234.json",
				"path":     "metadata/1718000000123-abcd1234.json",
				"size":     len(payload),
				"content":  wrapped,
			})
		})

	data, err := backend.Get(context.Background(), "metadata/1718000000123-abcd1234.json")
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
	assert.Equal(t, "Bearer t0ken", auth)
}

func TestGet_LargeFileUsesDownloadURL(t *testing.T) {
	backend, mock := setupHTTPMock(t)

	rawURL := "https://raw.github.test/octo/gallery/main/images/big.png"
	mock.RegisterResponder(http.MethodGet, contentsPath+"images/big.png",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{
			"type":         "file",
			"encoding":     "none",
			"name":         "big.png",
			"path":         "images/big.png",
			"size":         2 << 20,
			"content":      "",
			"download_url": rawURL,
		}))

	var auth string
	mock.RegisterResponder(http.MethodGet, rawURL, func(req *http.Request) (*http.Response, error) {
		auth = req.Header.Get("Authorization")
		return httpmock.NewBytesResponse(http.StatusOK, []byte("\x89PNG big")), nil
	})

	data, err := backend.Get(context.Background(), "images/big.png")
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG big", string(data))
	assert.Equal(t, "Bearer t0ken", auth)
}

func TestGet_NotFound(t *testing.T) {
	backend, mock := setupHTTPMock(t)

	mock.RegisterResponder(http.MethodGet, contentsPath+"metadata/missing.json",
		httpmock.NewJsonResponderOrPanic(http.StatusNotFound, map[string]string{"message": "Not Found"}))

	_, err := backend.Get(context.Background(), "metadata/missing.json")
	assert.ErrorIs(t, err, gallery.ErrNotFound)

	var storageErr *gallery.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "github", storageErr.Backend)
}

func TestGet_UpstreamFailure(t *testing.T) {
	backend, mock := setupHTTPMock(t)

	mock.RegisterResponder(http.MethodGet, contentsPath+"metadata/1.json",
		httpmock.NewJsonResponderOrPanic(http.StatusBadGateway, map[string]string{"message": "Bad Gateway"}))

	_, err := backend.Get(context.Background(), "metadata/1.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, gallery.ErrNotFound)
	assert.NotErrorIs(t, err, gallery.ErrConflict)
}

func TestPut_EncodesContentAsBase64(t *testing.T) {
	backend, mock := setupHTTPMock(t)

	binary := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x10}
	var body struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch"`
	}
	mock.RegisterResponder(http.MethodPut, contentsPath+"images/1-abcd1234.png",
		func(req *http.Request) (*http.Response, error) {
			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(raw, &body); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(http.StatusCreated, map[string]any{
				"content": map[string]any{"name": "1-abcd1234.png", "path": "images/1-abcd1234.png", "sha": "abc"},
				"commit":  map[string]any{"sha": "def", "message": body.Message},
			})
		})

	err := backend.Put(context.Background(), "images/1-abcd1234.png", binary, "Add image: 1-abcd1234.png")
	require.NoError(t, err)

	assert.Equal(t, "Add image: 1-abcd1234.png", body.Message)
	assert.Equal(t, "main", body.Branch)
	decoded, err := base64.StdEncoding.DecodeString(body.Content)
	require.NoError(t, err)
	assert.Equal(t, binary, decoded)
}

func TestPut_Conflict(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			backend, mock := setupHTTPMock(t)
			mock.RegisterResponder(http.MethodPut, contentsPath+"metadata/1.json",
				httpmock.NewJsonResponderOrPanic(status, map[string]string{"message": `Invalid request. "sha" wasn't supplied.`}))

			err := backend.Put(context.Background(), "metadata/1.json", []byte("{}"), "Add metadata: 1")
			assert.ErrorIs(t, err, gallery.ErrConflict)
		})
	}
}

func TestList_ReturnsFilesOnly(t *testing.T) {
	backend, mock := setupHTTPMock(t)

	mock.RegisterResponderWithQuery(http.MethodGet, contentsPath+"metadata", "ref=main",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, []map[string]any{
			{"type": "file", "name": "a.json", "path": "metadata/a.json", "download_url": "https://raw.github.test/octo/gallery/main/metadata/a.json"},
			{"type": "dir", "name": "archive", "path": "metadata/archive"},
			{"type": "file", "name": "README.md", "path": "metadata/README.md", "download_url": "https://raw.github.test/octo/gallery/main/metadata/README.md"},
		}))

	entries, err := backend.List(context.Background(), "metadata/")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, gallery.Entry{
		Name:        "a.json",
		Path:        "metadata/a.json",
		DownloadURL: "https://raw.github.test/octo/gallery/main/metadata/a.json",
	}, entries[0])
	assert.Equal(t, "README.md", entries[1].Name)
}

func TestList_MissingDirectory(t *testing.T) {
	backend, mock := setupHTTPMock(t)

	mock.RegisterResponder(http.MethodGet, contentsPath+"metadata",
		httpmock.NewJsonResponderOrPanic(http.StatusNotFound, map[string]string{"message": "Not Found"}))

	_, err := backend.List(context.Background(), "metadata")
	assert.ErrorIs(t, err, gallery.ErrNotFound)
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestDecodeContent(t *testing.T) {
	str := func(s string) *string { return &s }
	size := func(n int) *int { return &n }

	tests := []struct {
		name    string
		file    *github.RepositoryContent
		want    string
		ok      bool
		wantErr bool
	}{
		{"base64", &github.RepositoryContent{Encoding: str("base64"), Content: str(base64.StdEncoding.EncodeToString([]byte("hi"))), Size: size(2)}, "hi", true, false},
		{"empty file", &github.RepositoryContent{Encoding: str("base64"), Content: str(""), Size: size(0)}, "", true, false},
		{"omitted content", &github.RepositoryContent{Encoding: str("base64"), Content: str(""), Size: size(5 << 20)}, "", false, false},
		{"none encoding", &github.RepositoryContent{Encoding: str("none"), Size: size(5 << 20)}, "", false, false},
		{"plain", &github.RepositoryContent{Content: str("raw text"), Size: size(8)}, "raw text", true, false},
		{"unknown encoding", &github.RepositoryContent{Encoding: str("utf-16")}, "", false, true},
		{"bad base64", &github.RepositoryContent{Encoding: str("base64"), Content: str("!!!"), Size: size(3)}, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ok, err := decodeContent(tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, string(data))
			}
		})
	}
}

func TestErrorMessagesNamePath(t *testing.T) {
	backend, mock := setupHTTPMock(t)
	mock.RegisterResponder(http.MethodGet, contentsPath+"metadata/x.json",
		httpmock.NewJsonResponderOrPanic(http.StatusNotFound, map[string]string{"message": "Not Found"}))

	_, err := backend.Get(context.Background(), "metadata/x.json")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "metadata/x.json"))
}
