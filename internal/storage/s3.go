// Package storage resolves and fetches CSV blobs across the candidate
// storage buckets. The object store is any S3-compatible service; the
// metadata index is the row store's view of object paths, used for the
// pattern-query steps of the locator's widening search.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectStore is the blob-store contract the locator and builder need.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Exists reports whether an object is present at bucket/key.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// ListDirs returns the immediate "subdirectory" names under prefix
	// (no trailing slash on the returned names). Prefix must end in "/"
	// or be empty for the bucket root.
	ListDirs(ctx context.Context, bucket, prefix string) ([]string, error)

	// Download returns the full object body.
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// MetadataIndex is the metadata-store view of object paths. Pattern syntax
// is SQL LIKE ("%" wildcards); results are full object keys.
type MetadataIndex interface {
	Search(ctx context.Context, bucket, pattern string) ([]string, error)
}

// S3Store implements ObjectStore against any S3-compatible endpoint.
type S3Store struct {
	client *s3.Client
}

// S3Options configures the S3 client. Endpoint is empty for real AWS and set
// for S3-compatible stores (which usually also need path-style addressing).
type S3Options struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// NewS3Store builds an S3-backed object store.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &S3Store{client: client}, nil
}

// Exists probes for an object with a HEAD request. A 404-class response is
// a clean miss; anything else is an error the caller may treat as transient.
func (s *S3Store) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, fmt.Errorf("head %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

// ListDirs lists the immediate common prefixes under prefix.
func (s *S3Store) ListDirs(ctx context.Context, bucket, prefix string) ([]string, error) {
	var dirs []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			dir := strings.TrimSuffix(strings.TrimPrefix(*cp.Prefix, prefix), "/")
			if dir != "" {
				dirs = append(dirs, dir)
			}
		}
	}

	return dirs, nil
}

// Download returns the full object body.
func (s *S3Store) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s body: %w", bucket, key, err)
	}
	return data, nil
}
