// Package s3blob stores blobs in S3 or an S3-compatible service such as MinIO.
package s3blob

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "github.com/planetprotrader/backend/pkg/config"
)

// ClientConfig holds the connection settings for the object store
type ClientConfig struct {
	// Endpoint is empty for AWS, or the base URL of an S3-compatible service
	Endpoint       string
	Region         string
	Bucket         string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	ForcePathStyle bool
	// PublicBaseURL, when set, prefixes download URLs instead of the endpoint
	PublicBaseURL string
}

// ConfigFrom maps the application storage settings
func ConfigFrom(cfg appconfig.StorageConfig) ClientConfig {
	return ClientConfig{
		Endpoint:       cfg.Endpoint,
		Region:         cfg.Region,
		Bucket:         cfg.Bucket,
		AccessKey:      cfg.AccessKey,
		SecretKey:      cfg.SecretKey,
		UseSSL:         cfg.UseSSL,
		ForcePathStyle: cfg.ForcePathStyle,
		PublicBaseURL:  cfg.PublicBaseURL,
	}
}

// Client wraps the SDK client and the target bucket
type Client struct {
	s3      *s3.Client
	bucket  string
	baseURL string
}

// New creates an S3 client with static credentials
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3blob: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3blob: region is required")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("s3blob: load aws config: %w", err)
	}

	var opts []func(*s3.Options)
	endpoint := ""
	if cfg.Endpoint != "" {
		endpoint = normaliseEndpoint(cfg.Endpoint, cfg.UseSSL)
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if cfg.ForcePathStyle {
		opts = append(opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Client{
		s3:      s3.NewFromConfig(awsCfg, opts...),
		bucket:  cfg.Bucket,
		baseURL: downloadBase(cfg, endpoint),
	}, nil
}

// Health checks that the bucket is reachable
func (c *Client) Health(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return fmt.Errorf("s3blob: health check failed for bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Bucket is the target bucket
func (c *Client) Bucket() string {
	return c.bucket
}

// URL is the download URL for key
func (c *Client) URL(key string) string {
	return c.baseURL + "/" + strings.TrimLeft(key, "/")
}

// downloadBase picks the URL prefix objects are served from
func downloadBase(cfg ClientConfig, endpoint string) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case endpoint != "":
		return strings.TrimRight(endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// normaliseEndpoint adds a scheme when the endpoint has none
func normaliseEndpoint(endpoint string, useSSL bool) string {
	parsed, err := url.Parse(endpoint)
	if err == nil && parsed.Scheme != "" && parsed.Host != "" {
		return endpoint
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + endpoint
}
