package config

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-gallery/pkg/gallery"
	"github.com/tendant/simple-gallery/pkg/gallery/objectkey"
	"github.com/tendant/simple-gallery/pkg/gallery/urlstrategy"
)

func TestLoadDefaultsRequireRepository(t *testing.T) {
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github owner and repo")
}

func TestLoadWithOptions(t *testing.T) {
	cfg, err := Load(
		WithPort("9090"),
		WithEnvironment("production"),
		WithGitHubRepository("octo", "gallery", ""),
		WithGitHubToken("secret"),
		WithMaxUploadBytes(1024),
		WithListConcurrency(2),
		WithEntryTimeout(time.Second),
		WithListCacheTTL(time.Minute),
	)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, StorageGitHub, cfg.Storage.Type)
	assert.Equal(t, GitHubConfig{Owner: "octo", Repo: "gallery", Branch: "main", Token: "secret"}, cfg.Storage.GitHub)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, 2, cfg.ListConcurrency)
	assert.Equal(t, time.Second, cfg.EntryTimeout)
	assert.Equal(t, time.Minute, cfg.ListCacheTTL)
}

func TestOptionErrors(t *testing.T) {
	tests := []struct {
		name   string
		option Option
	}{
		{"empty port", WithPort("")},
		{"empty environment", WithEnvironment("")},
		{"empty repository", WithGitHubRepository("octo", "", "main")},
		{"empty fs dir", WithFilesystemStorage("")},
		{"empty bucket", WithS3Storage("", "us-west-2")},
		{"partial credentials", WithS3Credentials("key", "")},
		{"zero upload limit", WithMaxUploadBytes(0)},
		{"zero concurrency", WithListConcurrency(0)},
		{"zero timeout", WithEntryTimeout(0)},
		{"negative ttl", WithListCacheTTL(-time.Second)},
		{"bad storage url", WithStorageURL("ftp://host/dir")},
		{"empty sse algorithm", WithS3Encryption("", "key")},
		{"unknown id generator", WithIDGenerator("sequential")},
		{"relative server url", WithServerBaseURL("/gallery")},
		{"relative public url", WithPublicBaseURL("cdn.example.com")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(WithMemoryStorage(), tt.option)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"memory ok", func(c *ServerConfig) { c.Storage.Type = StorageMemory }, ""},
		{"unknown environment", func(c *ServerConfig) {
			c.Storage.Type = StorageMemory
			c.Environment = "staging"
		}, "environment must be one of"},
		{"fs without dir", func(c *ServerConfig) { c.Storage.Type = StorageFS }, "base directory"},
		{"s3 without bucket", func(c *ServerConfig) { c.Storage.Type = StorageS3 }, "bucket"},
		{"unknown storage", func(c *ServerConfig) { c.Storage.Type = "ftp" }, "unsupported storage type"},
		{"s3 unknown sse", func(c *ServerConfig) {
			c.Storage.Type = StorageS3
			c.Storage.S3.Bucket = "gallery"
			c.Storage.S3.SSEAlgorithm = "rot13"
		}, "sse algorithm"},
		{"s3 kms", func(c *ServerConfig) {
			c.Storage.Type = StorageS3
			c.Storage.S3.Bucket = "gallery"
			c.Storage.S3.SSEAlgorithm = "aws:kms"
		}, ""},
		{"ftp server url", func(c *ServerConfig) {
			c.Storage.Type = StorageMemory
			c.ServerBaseURL = "ftp://gallery.example.com"
		}, "server base url"},
		{"zero entry timeout", func(c *ServerConfig) {
			c.Storage.Type = StorageMemory
			c.EntryTimeout = 0
		}, "entry fetch timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestURLStrategy(t *testing.T) {
	cfg, err := Load(WithGitHubRepository("octo", "gallery", "site"))
	require.NoError(t, err)
	assert.Equal(t, urlstrategy.NewRawGitHubStrategy("octo", "gallery", "site"), cfg.URLStrategy())

	cfg, err = Load(WithGitHubRepository("octo", "gallery", ""), WithPublicBaseURL("https://cdn.example.com/"))
	require.NoError(t, err)
	assert.Equal(t, urlstrategy.NewCDNStrategy("https://cdn.example.com"), cfg.URLStrategy())

	cfg, err = Load(WithMemoryStorage(), WithPort("9090"))
	require.NoError(t, err)
	assert.Equal(t, urlstrategy.NewCDNStrategy("http://localhost:9090/files"), cfg.URLStrategy())

	cfg, err = Load(WithMemoryStorage(), WithServerBaseURL("https://gallery.example.com/"))
	require.NoError(t, err)
	assert.Equal(t, "https://gallery.example.com/files/images/a.png", cfg.URLStrategy().ImageURL("images/a.png"))
}

func TestBuildService(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		cfg, err := Load(WithMemoryStorage(), WithEventLogging(false))
		require.NoError(t, err)

		svc, err := cfg.BuildService()
		require.NoError(t, err)

		result, err := svc.ListImages(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 0, result.Count)
	})

	t.Run("filesystem", func(t *testing.T) {
		cfg, err := Load(WithFilesystemStorage(t.TempDir()), WithIDGenerator(objectkey.UUIDv7))
		require.NoError(t, err)

		svc, err := cfg.BuildService()
		require.NoError(t, err)

		uploaded, err := svc.UploadImage(t.Context(), gallery.UploadImageRequest{
			Title:       "Dunes",
			FileName:    "dunes.png",
			ContentType: "image/png",
			Data:        []byte("\x89PNG\r\n\x1a\nrest"),
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/files/images/"+uploaded.Record.Filename, uploaded.Record.URL)
		_, err = uuid.Parse(uploaded.ImageID)
		assert.NoError(t, err, "uuidv7 ids parse as UUIDs")
	})

	t.Run("github", func(t *testing.T) {
		cfg, err := Load(WithGitHubRepository("octo", "gallery", ""))
		require.NoError(t, err)
		_, err = cfg.BuildService()
		assert.NoError(t, err)
	})

	t.Run("s3", func(t *testing.T) {
		cfg, err := Load(
			WithS3Storage("gallery", "eu-west-1"),
			WithS3Credentials("key", "secret"),
			WithS3Endpoint("http://localhost:9000", true),
			WithS3Encryption("aws:kms", "alias/gallery"),
		)
		require.NoError(t, err)
		_, err = cfg.BuildService()
		assert.NoError(t, err)
	})
}
