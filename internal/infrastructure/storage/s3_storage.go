// Package storage uploads product images to S3-compatible object storage.
package storage

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	infraconfig "github.com/amishe1/lubex-bot/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxImageBytes limits uploaded product images
const maxImageBytes = 8 << 20

// ImageStore uploads images and returns their public URL.
// It is compatible with any S3-compatible storage (AWS S3, MinIO, etc.)
type ImageStore struct {
	client        *s3.Client
	bucket        string
	endpoint      string
	usePathStyle  bool
	publicBaseURL string
	keyPrefix     string
	logger        *zap.Logger
}

// Option is a functional option for configuring ImageStore
type Option func(*ImageStore)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *ImageStore) {
		s.logger = logger
	}
}

// WithKeyPrefix sets the object key prefix, "products/" by default
func WithKeyPrefix(prefix string) Option {
	return func(s *ImageStore) {
		s.keyPrefix = prefix
	}
}

// WithHTTPClient replaces the HTTP client used by the S3 SDK
func WithHTTPClient(hc *http.Client) Option {
	return func(s *ImageStore) {
		s.client = s3.New(s.client.Options(), func(o *s3.Options) {
			o.HTTPClient = hc
		})
	}
}

// NewImageStore creates an ImageStore from configuration. Bucket and both
// keys are required; the region defaults to us-east-1.
func NewImageStore(cfg *infraconfig.StorageConfig, opts ...Option) (*ImageStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	for _, req := range []struct{ value, name string }{
		{cfg.Bucket, "bucket"},
		{cfg.AccessKey, "access key"},
		{cfg.SecretKey, "secret key"},
	} {
		if strings.TrimSpace(req.value) == "" {
			return nil, fmt.Errorf("storage %s is required", req.name)
		}
	}

	endpoint, err := endpointURL(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := cmp.Or(cfg.Region, "us-east-1")
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	store := &ImageStore{
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.UsePathStyle
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}),
		bucket:        cfg.Bucket,
		endpoint:      endpoint,
		usePathStyle:  cfg.UsePathStyle,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		keyPrefix:     "products/",
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// endpointURL adds a scheme to a bare host:port endpoint. Empty means the
// AWS default endpoint.
func endpointURL(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return "", nil
	}
	if !strings.Contains(endpoint, "://") {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		endpoint = scheme + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	return strings.TrimRight(endpoint, "/"), nil
}

// UploadFile reads a local image and uploads it under a fresh key,
// returning the public URL
func (s *ImageStore) UploadFile(ctx context.Context, localPath string) (string, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return "", fmt.Errorf("image %s is larger than %d bytes", localPath, maxImageBytes)
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", localPath, contentType)
	}

	key := s.NewKey(filepath.Base(localPath))
	if err := s.Upload(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

// Upload puts data under key
func (s *ImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	s.logger.Info("Uploaded product image",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// NewKey returns a unique object key keeping the file extension
func (s *ImageStore) NewKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return s.keyPrefix + uuid.NewString() + ext
}

// PublicURL returns the URL products reference the object by. Without a
// configured public base URL it is derived from the endpoint and bucket.
func (s *ImageStore) PublicURL(key string) string {
	base := s.publicBaseURL
	if base == "" {
		switch {
		case s.endpoint == "":
			base = fmt.Sprintf("https://%s.s3.amazonaws.com", s.bucket)
		case s.usePathStyle:
			base = strings.TrimRight(s.endpoint, "/") + "/" + s.bucket
		default:
			u, err := url.Parse(s.endpoint)
			if err != nil {
				base = strings.TrimRight(s.endpoint, "/") + "/" + s.bucket
			} else {
				u.Host = s.bucket + "." + u.Host
				base = strings.TrimRight(u.String(), "/")
			}
		}
	}
	return base + "/" + key
}

// Bucket returns the bucket name
func (s *ImageStore) Bucket() string {
	return s.bucket
}
