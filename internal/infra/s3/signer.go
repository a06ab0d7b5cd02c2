package s3

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	objectRefScheme = "s3://"
	defaultRegion   = "us-east-1"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// Region is sent with every request. Without it minio asks the server
	// for the bucket location before it can presign.
	Region string
	UseSSL bool
}

type Signer struct {
	client *minio.Client
	bucket string
}

func NewSigner(opts Options) (*Signer, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	bucket := strings.TrimSpace(opts.Bucket)
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = defaultRegion
	}
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &Signer{client: client, bucket: bucket}, nil
}

// IsObjectRef reports whether path names an object as s3://bucket/key.
func IsObjectRef(path string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(path)), objectRefScheme)
}

// ParseObjectRef splits s3://bucket/key. An empty bucket (s3:///key) means
// the signer's default bucket.
func ParseObjectRef(ref string) (string, string, error) {
	trimmed := strings.TrimSpace(ref)
	if !IsObjectRef(trimmed) {
		return "", "", fmt.Errorf("not an s3 object ref: %q", ref)
	}

	rest := trimmed[len(objectRefScheme):]
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("s3 object ref %q has no key", ref)
	}
	return bucket, key, nil
}

// PresignRef presigns an s3://bucket/key reference.
func (s *Signer) PresignRef(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	bucket, key, err := ParseObjectRef(ref)
	if err != nil {
		return "", err
	}
	return s.presign(ctx, bucket, key, ttl)
}

func (s *Signer) presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("s3 signer is not initialized")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil
	}
	if strings.TrimSpace(bucket) == "" {
		bucket = s.bucket
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	presigned, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return presigned.String(), nil
}
