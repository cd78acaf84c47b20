package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3sdk "github.com/aws/aws-sdk-go-v2/service/s3"

	awss3 "tasnim.dev/deploy-reaper/internal/aws/s3"
	"tasnim.dev/deploy-reaper/internal/retention"
)

// StorageOptions selects the credentials and endpoint of the storage client.
type StorageOptions struct {
	Profile string
	Region  string
	// Endpoint points the client at an S3-compatible service such as
	// LocalStack or MinIO. Empty means AWS.
	Endpoint string
}

// Storage exposes the S3 client through the interfaces the retention engine
// consumes.
type Storage struct {
	S3 *awss3.Client
}

var _ retention.Store = (*Storage)(nil)

func NewStorage(s3 *awss3.Client) *Storage {
	return &Storage{S3: s3}
}

// NewS3Storage builds a Storage backed by the AWS SDK. It also returns the
// loaded AWS config so callers can reuse it.
func NewS3Storage(ctx context.Context, opts StorageOptions) (*Storage, aws.Config, error) {
	cfg, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, aws.Config{}, err
	}

	api := awss3sdk.NewFromConfig(cfg, func(o *awss3sdk.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewStorage(awss3.NewClient(api)), cfg, nil
}

func (s *Storage) ListBuckets(ctx context.Context) ([]string, error) {
	buckets, err := s.S3.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(buckets))
	for i, b := range buckets {
		names[i] = b.Name
	}
	return names, nil
}

func (s *Storage) ListObjects(ctx context.Context, bucket, prefix string) ([]retention.Object, error) {
	objects, err := s.S3.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	return toRetentionObjects(objects), nil
}

func (s *Storage) ListCommonPrefixes(ctx context.Context, bucket, delimiter string) ([]retention.CommonPrefix, error) {
	prefixes, err := s.S3.ListCommonPrefixes(ctx, bucket, delimiter)
	if err != nil {
		return nil, err
	}
	out := make([]retention.CommonPrefix, len(prefixes))
	for i, cp := range prefixes {
		out[i] = retention.CommonPrefix{
			Prefix:  cp.Prefix,
			Objects: toRetentionObjects(cp.Objects),
		}
	}
	return out, nil
}

func (s *Storage) DeleteObject(ctx context.Context, bucket, key string) error {
	return s.S3.DeleteObject(ctx, bucket, key)
}

func toRetentionObjects(objects []awss3.S3Object) []retention.Object {
	out := make([]retention.Object, len(objects))
	for i, obj := range objects {
		out[i] = retention.Object{Key: obj.Key, LastModified: obj.LastModified}
	}
	return out
}
