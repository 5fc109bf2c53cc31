package config

import (
	"fmt"
	"net/http"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithStorageURL selects the store from a connection string in the STORAGE_URL formats of WithEnv
func WithStorageURL(raw string) Option {
	return func(c *ServerConfig) error {
		return applyStorageURL(raw, &c.Storage)
	}
}

// WithGitHubRepository stores content in owner/repo on branch
func WithGitHubRepository(owner, repo, branch string) Option {
	return func(c *ServerConfig) error {
		if owner == "" || repo == "" {
			return fmt.Errorf("github owner and repo cannot be empty")
		}
		c.Storage.Type = StorageGitHub
		c.Storage.GitHub.Owner = owner
		c.Storage.GitHub.Repo = repo
		if branch != "" {
			c.Storage.GitHub.Branch = branch
		}
		return nil
	}
}

// WithGitHubToken sets the token used for the contents API
func WithGitHubToken(token string) Option {
	return func(c *ServerConfig) error {
		c.Storage.GitHub.Token = token
		return nil
	}
}

// WithGitHubAPIURL points the GitHub store at an Enterprise or test API
func WithGitHubAPIURL(apiURL string) Option {
	return func(c *ServerConfig) error {
		c.Storage.GitHub.APIURL = apiURL
		return nil
	}
}

// WithMemoryStorage keeps all content in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage.Type = StorageMemory
		return nil
	}
}

// WithFilesystemStorage stores content under baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage.Type = StorageFS
		c.Storage.BaseDir = baseDir
		return nil
	}
}

// WithS3Storage stores content in bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		c.Storage.Type = StorageS3
		c.Storage.S3.Bucket = bucket
		if region != "" {
			c.Storage.S3.Region = region
		}
		return nil
	}
}

// WithS3Credentials sets static S3 credentials
func WithS3Credentials(accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		if accessKeyID == "" || secretAccessKey == "" {
			return fmt.Errorf("S3 access key ID and secret access key cannot be empty")
		}
		c.Storage.S3.AccessKeyID = accessKeyID
		c.Storage.S3.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithS3Endpoint targets an S3-compatible service such as MinIO
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		c.Storage.S3.Endpoint = endpoint
		c.Storage.S3.UsePathStyle = usePathStyle
		return nil
	}
}

// WithS3Encryption requests server-side encryption for every object.
// algorithm is "AES256" or "aws:kms"; kmsKeyID is optional for aws:kms.
func WithS3Encryption(algorithm, kmsKeyID string) Option {
	return func(c *ServerConfig) error {
		if algorithm == "" {
			return fmt.Errorf("S3 SSE algorithm cannot be empty")
		}
		c.Storage.S3.SSEAlgorithm = algorithm
		c.Storage.S3.SSEKMSKeyID = kmsKeyID
		return nil
	}
}

// WithPublicBaseURL builds image URLs from baseURL instead of the store
func WithPublicBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = baseURL
		return nil
	}
}

// WithServerBaseURL sets the external address used for file route URLs
func WithServerBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.ServerBaseURL = baseURL
		return nil
	}
}

// WithIDGenerator selects the image ID generator by objectkey name
func WithIDGenerator(name string) Option {
	return func(c *ServerConfig) error {
		c.IDGenerator = name
		return nil
	}
}

// WithMaxUploadBytes sets the largest accepted image
func WithMaxUploadBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max upload bytes must be positive, got: %d", n)
		}
		c.MaxUploadBytes = n
		return nil
	}
}

// WithListConcurrency bounds concurrent metadata fetches
func WithListConcurrency(n int) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("list concurrency must be positive, got: %d", n)
		}
		c.ListConcurrency = n
		return nil
	}
}

// WithEntryTimeout sets the per-entry metadata fetch timeout
func WithEntryTimeout(d time.Duration) Option {
	return func(c *ServerConfig) error {
		if d <= 0 {
			return fmt.Errorf("entry timeout must be positive, got: %s", d)
		}
		c.EntryTimeout = d
		return nil
	}
}

// WithListCacheTTL caches the aggregate list for d; zero disables it
func WithListCacheTTL(d time.Duration) Option {
	return func(c *ServerConfig) error {
		if d < 0 {
			return fmt.Errorf("list cache ttl cannot be negative, got: %s", d)
		}
		c.ListCacheTTL = d
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}

// WithHTTPClient sets the client used by network backends
func WithHTTPClient(client *http.Client) Option {
	return func(c *ServerConfig) error {
		c.HTTPClient = client
		return nil
	}
}
