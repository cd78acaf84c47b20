package aws

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awss3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awss3 "tasnim.dev/deploy-reaper/internal/aws/s3"
	"tasnim.dev/deploy-reaper/internal/retention"
)

// bucketAPI serves a single bucket from memory.
type bucketAPI struct {
	objects []s3types.Object
	deleted []string
}

func (b *bucketAPI) ListBuckets(ctx context.Context, params *awss3sdk.ListBucketsInput, optFns ...func(*awss3sdk.Options)) (*awss3sdk.ListBucketsOutput, error) {
	return &awss3sdk.ListBucketsOutput{Buckets: []s3types.Bucket{
		{Name: awssdk.String("sure-app-web")},
		{Name: awssdk.String("logs")},
	}}, nil
}

func (b *bucketAPI) ListObjectsV2(ctx context.Context, params *awss3sdk.ListObjectsV2Input, optFns ...func(*awss3sdk.Options)) (*awss3sdk.ListObjectsV2Output, error) {
	prefix := awssdk.ToString(params.Prefix)
	out := &awss3sdk.ListObjectsV2Output{}
	seen := map[string]bool{}
	for _, obj := range b.objects {
		key := awssdk.ToString(obj.Key)
		if len(key) < len(prefix) || key[:len(prefix)] != prefix {
			continue
		}
		if params.Delimiter != nil {
			seg := retention.FirstSegment(key) + "/"
			if !seen[seg] {
				seen[seg] = true
				out.CommonPrefixes = append(out.CommonPrefixes, s3types.CommonPrefix{Prefix: awssdk.String(seg)})
			}
			continue
		}
		out.Contents = append(out.Contents, obj)
	}
	return out, nil
}

func (b *bucketAPI) DeleteObject(ctx context.Context, params *awss3sdk.DeleteObjectInput, optFns ...func(*awss3sdk.Options)) (*awss3sdk.DeleteObjectOutput, error) {
	b.deleted = append(b.deleted, awssdk.ToString(params.Key))
	return &awss3sdk.DeleteObjectOutput{}, nil
}

func TestStorage_ImplementsRetentionStore(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	api := &bucketAPI{objects: []s3types.Object{
		{Key: awssdk.String("deploy1/index.html"), LastModified: &t1},
		{Key: awssdk.String("deploy1/app.js"), LastModified: &t2},
		{Key: awssdk.String("deploy2/index.html")},
	}}
	store := NewStorage(awss3.NewClient(api))
	ctx := context.Background()

	names, err := store.ListBuckets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sure-app-web", "logs"}, names)

	objects, err := store.ListObjects(ctx, "sure-app-web", "deploy1")
	require.NoError(t, err)
	assert.Equal(t, []retention.Object{
		{Key: "deploy1/index.html", LastModified: t1},
		{Key: "deploy1/app.js", LastModified: t2},
	}, objects)

	prefixes, err := store.ListCommonPrefixes(ctx, "sure-app-web", "/")
	require.NoError(t, err)
	require.Len(t, prefixes, 2)
	assert.Equal(t, "deploy1/", prefixes[0].Prefix)
	assert.Len(t, prefixes[0].Objects, 2)
	assert.Equal(t, "deploy2/", prefixes[1].Prefix)
	assert.True(t, prefixes[1].Objects[0].LastModified.IsZero())

	require.NoError(t, store.DeleteObject(ctx, "sure-app-web", "deploy2/index.html"))
	assert.Equal(t, []string{"deploy2/index.html"}, api.deleted)
}

func TestLoadConfig_EndpointDefaultsRegion(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_PROFILE", "")

	cfg, err := LoadConfig(context.Background(), StorageOptions{Endpoint: "http://localhost:4566"})
	require.NoError(t, err)
	assert.Equal(t, DefaultEndpointRegion, cfg.Region)

	cfg, err = LoadConfig(context.Background(), StorageOptions{Endpoint: "http://localhost:4566", Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
}

func TestAccountID_SkippedForCustomEndpoint(t *testing.T) {
	assert.Equal(t, "", AccountID(context.Background(), awssdk.Config{}, StorageOptions{Endpoint: "http://localhost:9000"}))
}
