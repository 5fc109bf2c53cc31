package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the environment surface of ServerConfig. Unset variables
// leave the value from defaults or earlier options untouched.
type envConfig struct {
	Port        string `env:"PORT" env-description:"Server port (default: 8080)"`
	Environment string `env:"ENVIRONMENT" env-description:"development, production or testing (default: development)"`

	StorageURL string `env:"STORAGE_URL" env-description:"github://[owner/repo], memory://, file:///path or s3://bucket?region=..."`

	GitHubToken  string `env:"GITHUB_TOKEN" env-description:"Token with contents read/write permission"`
	GitHubOwner  string `env:"GITHUB_OWNER" env-description:"Repository owner"`
	GitHubRepo   string `env:"GITHUB_REPO" env-description:"Repository name"`
	GitHubBranch string `env:"GITHUB_BRANCH" env-description:"Branch for reads and writes (default: main)"`
	GitHubAPIURL string `env:"GITHUB_API_URL" env-description:"API base URL for GitHub Enterprise"`

	PublicBaseURL string `env:"PUBLIC_BASE_URL" env-description:"Base URL written into image metadata"`
	ServerBaseURL string `env:"SERVER_BASE_URL" env-description:"External address of this server for file URLs (default: http://localhost:PORT)"`
	IDGenerator   string `env:"ID_GENERATOR" env-description:"Image ID scheme, time-random or uuidv7 (default: time-random)"`

	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES" env-description:"Largest accepted image in bytes (default: 52428800)"`
	ListConcurrency   int           `env:"LIST_CONCURRENCY" env-description:"Concurrent metadata fetches (default: 8)"`
	EntryFetchTimeout time.Duration `env:"ENTRY_FETCH_TIMEOUT" env-description:"Per-entry metadata fetch timeout (default: 10s)"`
	ListCacheTTL      time.Duration `env:"LIST_CACHE_TTL" env-description:"Aggregate list cache window, 0 disables (default: 0s)"`

	AWSRegion          string `env:"AWS_REGION" env-description:"S3 region"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-description:"S3 access key ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-description:"S3 secret access key"`
	S3Endpoint         string `env:"S3_ENDPOINT" env-description:"Endpoint for S3-compatible services"`
	S3UsePathStyle     bool   `env:"S3_USE_PATH_STYLE" env-description:"Use path-style S3 addressing"`
	S3SSEAlgorithm     string `env:"S3_SSE_ALGORITHM" env-description:"Server-side encryption, AES256 or aws:kms"`
	S3SSEKMSKeyID      string `env:"S3_SSE_KMS_KEY_ID" env-description:"KMS key ID for aws:kms encryption"`
}

// WithEnv applies environment variable overrides.
//
// Server:
//
//	PORT - Server port (default: "8080")
//	ENVIRONMENT - Runtime environment (default: "development")
//
// Storage:
//
//	STORAGE_URL - Storage connection string (one of):
//	              - "github://" - GitHub repository from GITHUB_OWNER/GITHUB_REPO (default)
//	              - "github://owner/repo?branch=main" - GitHub repository inline
//	              - "memory://" - In-memory storage
//	              - "file:///path/to/data" - Filesystem storage
//	              - "s3://bucket?region=us-east-1&prefix=gallery" - S3 storage
//	GITHUB_TOKEN, GITHUB_OWNER, GITHUB_REPO, GITHUB_BRANCH, GITHUB_API_URL
//	AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, S3_ENDPOINT, S3_USE_PATH_STYLE
//	S3_SSE_ALGORITHM, S3_SSE_KMS_KEY_ID
//
// Gallery:
//
//	PUBLIC_BASE_URL, SERVER_BASE_URL, ID_GENERATOR
//	MAX_UPLOAD_BYTES, LIST_CONCURRENCY, ENTRY_FETCH_TIMEOUT, LIST_CACHE_TTL
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		setString(&c.Port, env.Port)
		setString(&c.Environment, env.Environment)

		// GitHub variables first so an inline github:// URL can override them
		gh := &c.Storage.GitHub
		setString(&gh.Token, env.GitHubToken)
		setString(&gh.Owner, env.GitHubOwner)
		setString(&gh.Repo, env.GitHubRepo)
		setString(&gh.Branch, env.GitHubBranch)
		setString(&gh.APIURL, env.GitHubAPIURL)

		s3 := &c.Storage.S3
		setString(&s3.Region, env.AWSRegion)
		setString(&s3.AccessKeyID, env.AWSAccessKeyID)
		setString(&s3.SecretAccessKey, env.AWSSecretAccessKey)
		setString(&s3.Endpoint, env.S3Endpoint)
		if env.S3UsePathStyle {
			s3.UsePathStyle = true
		}
		setString(&s3.SSEAlgorithm, env.S3SSEAlgorithm)
		setString(&s3.SSEKMSKeyID, env.S3SSEKMSKeyID)

		if env.StorageURL != "" {
			if err := applyStorageURL(env.StorageURL, &c.Storage); err != nil {
				return err
			}
		}

		setString(&c.PublicBaseURL, env.PublicBaseURL)
		setString(&c.ServerBaseURL, env.ServerBaseURL)
		setString(&c.IDGenerator, env.IDGenerator)
		if env.MaxUploadBytes != 0 {
			c.MaxUploadBytes = env.MaxUploadBytes
		}
		if env.ListConcurrency != 0 {
			c.ListConcurrency = env.ListConcurrency
		}
		if env.EntryFetchTimeout != 0 {
			c.EntryTimeout = env.EntryFetchTimeout
		}
		if env.ListCacheTTL != 0 {
			c.ListCacheTTL = env.ListCacheTTL
		}

		return nil
	}
}

// EnvUsage describes every environment variable WithEnv reads
func EnvUsage() string {
	header := "Environment variables:"
	text, err := cleanenv.GetDescription(&envConfig{}, &header)
	if err != nil {
		return header
	}
	return text
}

// applyStorageURL configures storage from a connection string
func applyStorageURL(raw string, s *StorageConfig) error {
	switch raw {
	case "memory", "memory://":
		s.Type = StorageMemory
		return nil
	case "github", "github://":
		s.Type = StorageGitHub
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL %q: %w", raw, err)
	}

	switch u.Scheme {
	case "github":
		return applyGitHubStorage(u, s)
	case "memory":
		s.Type = StorageMemory
		return nil
	case "file":
		return applyFilesystemStorage(u, s)
	case "s3":
		return applyS3Storage(u, s)
	}

	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'github://', 'memory://', 'file://...', or 's3://...')", raw)
}

// applyGitHubStorage configures GitHub storage from URL
// Format: github://owner/repo?branch=main
func applyGitHubStorage(u *url.URL, s *StorageConfig) error {
	s.Type = StorageGitHub
	if u.Host != "" {
		s.GitHub.Owner = u.Host
	}
	if repo := strings.Trim(u.Path, "/"); repo != "" {
		if strings.Contains(repo, "/") {
			return fmt.Errorf("github STORAGE_URL must be github://owner/repo, got %s", u.Redacted())
		}
		s.GitHub.Repo = repo
	}
	if branch := u.Query().Get("branch"); branch != "" {
		s.GitHub.Branch = branch
	}
	return nil
}

// applyFilesystemStorage configures filesystem storage from URL
// Format: file:///path/to/data or file://./relative/path
func applyFilesystemStorage(u *url.URL, s *StorageConfig) error {
	dir := u.Host + u.Path
	if dir == "" {
		return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
	}
	s.Type = StorageFS
	s.BaseDir = dir
	return nil
}

// applyS3Storage configures S3 storage from URL
// Format: s3://bucket?region=us-east-1&endpoint=http://localhost:9000&prefix=gallery&path_style=true&sse=aws:kms&kms_key_id=alias/gallery
func applyS3Storage(u *url.URL, s *StorageConfig) error {
	if u.Host == "" {
		return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
	}
	s.Type = StorageS3
	s.S3.Bucket = u.Host

	query := u.Query()
	if region := query.Get("region"); region != "" {
		s.S3.Region = region
	}
	if endpoint := query.Get("endpoint"); endpoint != "" {
		s.S3.Endpoint = endpoint
	}
	prefix := strings.Trim(u.Path, "/")
	if p := query.Get("prefix"); p != "" {
		prefix = p
	}
	if prefix != "" {
		s.S3.Prefix = prefix
	}
	if sse := query.Get("sse"); sse != "" {
		s.S3.SSEAlgorithm = sse
	}
	if keyID := query.Get("kms_key_id"); keyID != "" {
		s.S3.SSEKMSKeyID = keyID
	}
	if raw := query.Get("path_style"); raw != "" {
		pathStyle, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid path_style in STORAGE_URL: %w", err)
		}
		s.S3.UsePathStyle = pathStyle
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
