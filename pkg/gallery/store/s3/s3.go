package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tendant/simple-gallery/pkg/gallery"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	Prefix          string // Optional key prefix the gallery layout lives under
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)

	// Server-side encryption options
	EnableSSE    bool   // Enable server-side encryption
	SSEAlgorithm string // SSE algorithm (AES256 or aws:kms)
	SSEKMSKeyID  string // Optional KMS key ID for aws:kms algorithm

	// HTTPClient overrides the transport used by the S3 client
	HTTPClient *http.Client
}

// Backend is an S3-compatible implementation of the gallery.Store interface.
// The commit message of a Put is kept as object metadata.
type Backend struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	config   Config
}

// New creates a new S3-compatible storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1"
	}

	switch config.SSEAlgorithm {
	case "", "AES256", "aws:kms":
	default:
		return nil, fmt.Errorf("invalid SSE algorithm %q", config.SSEAlgorithm)
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		// Use provided credentials
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}
	if config.HTTPClient != nil {
		loadOptions = append(loadOptions, awsconfig.WithHTTPClient(config.HTTPClient))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &Backend{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   config.Bucket,
		prefix:   strings.Trim(config.Prefix, "/"),
		config:   config,
	}, nil
}

// Get downloads the object stored at p
func (b *Backend) Get(ctx context.Context, p string) ([]byte, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(p)),
	})
	if err != nil {
		return nil, b.storageError("get", p, classify(err))
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, b.storageError("get", p, fmt.Errorf("failed to read object body: %w", err))
	}
	return data, nil
}

// Put uploads data to p with a conditional write, so an existing object is
// never replaced.
func (b *Backend) Put(ctx context.Context, p string, data []byte, message string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key(p)),
		Body:        bytes.NewReader(data),
		IfNoneMatch: aws.String("*"),
		Metadata:    map[string]string{"commit-message": asciiOnly(message)},
	}
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		input.ContentType = aws.String(ct)
	}
	b.applySSE(input)

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return b.storageError("put", p, classify(err))
	}
	return nil
}

// List returns the objects directly under dir
func (b *Backend) List(ctx context.Context, dir string) ([]gallery.Entry, error) {
	prefix := b.key(strings.Trim(dir, "/")) + "/"

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	var entries []gallery.Entry
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, b.storageError("list", dir, classify(err))
		}
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			name := strings.TrimPrefix(key, prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			entries = append(entries, gallery.Entry{
				Name:        name,
				Path:        strings.TrimPrefix(strings.TrimPrefix(key, b.prefix), "/"),
				DownloadURL: fmt.Sprintf("s3://%s/%s", b.bucket, key),
			})
		}
	}

	// S3 has no directories; an empty prefix is reported like a missing one
	if len(entries) == 0 {
		return nil, b.storageError("list", dir, gallery.ErrNotFound)
	}
	return entries, nil
}

func (b *Backend) applySSE(input *s3.PutObjectInput) {
	if !b.config.EnableSSE {
		return
	}
	switch b.config.SSEAlgorithm {
	case "AES256":
		input.ServerSideEncryption = types.ServerSideEncryptionAes256
	case "aws:kms":
		input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
		if b.config.SSEKMSKeyID != "" {
			input.SSEKMSKeyId = aws.String(b.config.SSEKMSKeyID)
		}
	}
}

func (b *Backend) key(p string) string {
	p = strings.TrimPrefix(p, "/")
	if b.prefix == "" {
		return p
	}
	return b.prefix + "/" + p
}

func (b *Backend) storageError(op, p string, err error) error {
	return &gallery.StorageError{Backend: "s3", Path: p, Op: op, Err: err}
}

// classify maps S3 error codes onto the gallery store sentinels
func classify(err error) error {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %w", gallery.ErrNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %w", gallery.ErrNotFound, err)
		case "PreconditionFailed", "ConditionalRequestConflict":
			return fmt.Errorf("%w: %w", gallery.ErrConflict, err)
		}
	}
	return err
}

// asciiOnly keeps a commit message usable as an S3 metadata header value
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '_'
		}
		return r
	}, s)
}
