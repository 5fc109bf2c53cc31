package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/tendant/simple-gallery/pkg/gallery"
	"github.com/tendant/simple-gallery/pkg/gallery/objectkey"
	fsstore "github.com/tendant/simple-gallery/pkg/gallery/store/fs"
	githubstore "github.com/tendant/simple-gallery/pkg/gallery/store/github"
	memorystore "github.com/tendant/simple-gallery/pkg/gallery/store/memory"
	s3store "github.com/tendant/simple-gallery/pkg/gallery/store/s3"
	"github.com/tendant/simple-gallery/pkg/gallery/urlstrategy"
)

// Storage backend types
const (
	StorageGitHub = "github"
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"
)

var environments = []string{"development", "production", "testing"}

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:        "8080",
		Environment: "development",
		Storage: StorageConfig{
			Type: StorageGitHub,
			GitHub: GitHubConfig{
				Branch: gallery.DefaultBranch,
			},
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		IDGenerator:        objectkey.TimeRandom,
		MaxUploadBytes:     gallery.DefaultMaxUploadBytes,
		ListConcurrency:    8,
		EntryTimeout:       10 * time.Second,
		EnableEventLogging: true,
	}
}

// ServerConfig represents server configuration for the gallery service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	Storage StorageConfig

	// PublicBaseURL, when set, is the base of every image URL written into
	// metadata. Otherwise GitHub storage uses raw.githubusercontent.com and
	// every other store points at this server's file route.
	PublicBaseURL string

	// ServerBaseURL is the external address of this server, used for file
	// route URLs. Defaults to http://localhost:<Port>.
	ServerBaseURL string

	// IDGenerator names the objectkey generator for new image IDs
	IDGenerator string

	MaxUploadBytes  int64
	ListConcurrency int
	EntryTimeout    time.Duration
	ListCacheTTL    time.Duration

	EnableEventLogging bool

	// HTTPClient is handed to network backends. Not read from the environment.
	HTTPClient *http.Client
}

// StorageConfig selects and configures the content store
type StorageConfig struct {
	Type    string // "github", "memory", "fs", "s3"
	GitHub  GitHubConfig
	BaseDir string // fs only
	S3      S3Config
}

// GitHubConfig addresses the repository used as the content store
type GitHubConfig struct {
	Owner  string
	Repo   string
	Branch string
	Token  string
	APIURL string
}

// S3Config addresses the bucket used as the content store
type S3Config struct {
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	SSEAlgorithm    string // "", "AES256" or "aws:kms"
	SSEKMSKeyID     string
}

// IsDevelopment reports whether the server runs in development mode
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("environment must be one of %v, got %q", environments, c.Environment)
	}

	switch c.Storage.Type {
	case StorageGitHub:
		if c.Storage.GitHub.Owner == "" || c.Storage.GitHub.Repo == "" {
			return errors.New("github owner and repo are required for github storage")
		}
	case StorageMemory:
	case StorageFS:
		if c.Storage.BaseDir == "" {
			return errors.New("base directory is required for fs storage")
		}
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("bucket is required for s3 storage")
		}
		switch c.Storage.S3.SSEAlgorithm {
		case "", "AES256", "aws:kms":
		default:
			return fmt.Errorf("s3 sse algorithm must be AES256 or aws:kms, got %q", c.Storage.S3.SSEAlgorithm)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	if c.ListConcurrency <= 0 {
		return errors.New("list concurrency must be positive")
	}
	if c.EntryTimeout <= 0 {
		return errors.New("entry fetch timeout must be positive")
	}
	if c.ListCacheTTL < 0 {
		return errors.New("list cache ttl cannot be negative")
	}
	if _, err := objectkey.New(c.IDGenerator); err != nil {
		return err
	}
	if err := validateBaseURL("public base url", c.PublicBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("server base url", c.ServerBaseURL); err != nil {
		return err
	}

	return nil
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService() (gallery.Service, error) {
	store, err := c.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s store: %w", c.Storage.Type, err)
	}
	return c.BuildServiceWithStore(store)
}

// BuildServiceWithStore creates a Service over an already constructed store
func (c *ServerConfig) BuildServiceWithStore(store gallery.Store) (gallery.Service, error) {
	keys, err := objectkey.New(c.IDGenerator)
	if err != nil {
		return nil, err
	}

	options := []gallery.Option{
		gallery.WithStore(store),
		gallery.WithKeyGenerator(keys),
		gallery.WithURLStrategy(c.URLStrategy()),
		gallery.WithMaxUploadBytes(c.MaxUploadBytes),
		gallery.WithListConcurrency(c.ListConcurrency),
		gallery.WithEntryTimeout(c.EntryTimeout),
		gallery.WithListCacheTTL(c.ListCacheTTL),
	}

	// Set up event sink
	if c.EnableEventLogging {
		options = append(options, gallery.WithEventSink(gallery.NewLoggingEventSink(nil)))
	} else {
		options = append(options, gallery.WithEventSink(gallery.NewNoopEventSink()))
	}

	return gallery.New(options...)
}

// BuildStore creates the content store selected by Storage.Type
func (c *ServerConfig) BuildStore() (gallery.Store, error) {
	switch c.Storage.Type {
	case StorageGitHub:
		gh := c.Storage.GitHub
		return githubstore.New(githubstore.Config{
			Owner:      gh.Owner,
			Repo:       gh.Repo,
			Branch:     gh.Branch,
			Token:      gh.Token,
			BaseURL:    gh.APIURL,
			HTTPClient: c.HTTPClient,
		})

	case StorageMemory:
		return memorystore.New(), nil

	case StorageFS:
		return fsstore.New(fsstore.Config{BaseDir: c.Storage.BaseDir})

	case StorageS3:
		s3 := c.Storage.S3
		return s3store.New(s3store.Config{
			Region:          s3.Region,
			Bucket:          s3.Bucket,
			Prefix:          s3.Prefix,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			Endpoint:        s3.Endpoint,
			UsePathStyle:    s3.UsePathStyle,
			EnableSSE:       s3.SSEAlgorithm != "",
			SSEAlgorithm:    s3.SSEAlgorithm,
			SSEKMSKeyID:     s3.SSEKMSKeyID,
			HTTPClient:      c.HTTPClient,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}

// URLStrategy returns how absolute image URLs are built
func (c *ServerConfig) URLStrategy() gallery.URLStrategy {
	if c.PublicBaseURL != "" {
		return urlstrategy.NewCDNStrategy(c.PublicBaseURL)
	}
	if c.Storage.Type == StorageGitHub {
		gh := c.Storage.GitHub
		return urlstrategy.NewRawGitHubStrategy(gh.Owner, gh.Repo, gh.Branch)
	}
	return urlstrategy.NewCDNStrategy(c.serverBaseURL() + gallery.FilesPathPrefix)
}

func (c *ServerConfig) serverBaseURL() string {
	if c.ServerBaseURL != "" {
		return strings.TrimSuffix(c.ServerBaseURL, "/")
	}
	return "http://localhost:" + c.Port
}

// validateBaseURL accepts an empty value or an absolute http(s) URL
func validateBaseURL(name, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
