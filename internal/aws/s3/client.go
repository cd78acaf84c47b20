package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type S3API interface {
	ListBuckets(ctx context.Context, params *awss3.ListBucketsInput, optFns ...func(*awss3.Options)) (*awss3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
}

type Client struct {
	api S3API
}

func NewClient(api S3API) *Client {
	return &Client{api: api}
}

func (c *Client) ListBuckets(ctx context.Context) ([]S3Bucket, error) {
	var buckets []S3Bucket
	var token *string

	for {
		out, err := c.api.ListBuckets(ctx, &awss3.ListBucketsInput{
			ContinuationToken: token,
		})
		if err != nil {
			return nil, wrapAPIError("ListBuckets", err)
		}

		for _, b := range out.Buckets {
			var createdAt time.Time
			if b.CreationDate != nil {
				createdAt = *b.CreationDate
			}
			buckets = append(buckets, S3Bucket{
				Name:      aws.ToString(b.Name),
				CreatedAt: createdAt,
			})
		}

		if aws.ToString(out.ContinuationToken) == "" {
			break
		}
		token = out.ContinuationToken
	}

	return buckets, nil
}

// ListObjects returns every object under prefix, following continuation
// tokens until the listing is exhausted.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) ([]S3Object, error) {
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []S3Object
	p := awss3.NewListObjectsV2Paginator(c.api, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, wrapAPIError(fmt.Sprintf("ListObjectsV2(%s)", bucket), err)
		}
		for _, obj := range out.Contents {
			objects = append(objects, toObject(obj))
		}
	}
	return objects, nil
}

// ListCommonPrefixes lists the top-level prefixes of bucket under delimiter
// and then every object stored beneath each of them.
func (c *Client) ListCommonPrefixes(ctx context.Context, bucket, delimiter string) ([]CommonPrefix, error) {
	input := &awss3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Delimiter: aws.String(delimiter),
	}

	var prefixes []CommonPrefix
	p := awss3.NewListObjectsV2Paginator(c.api, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, wrapAPIError(fmt.Sprintf("ListObjectsV2(%s)", bucket), err)
		}
		for _, cp := range out.CommonPrefixes {
			prefixes = append(prefixes, CommonPrefix{Prefix: aws.ToString(cp.Prefix)})
		}
	}

	for i := range prefixes {
		objects, err := c.ListObjects(ctx, bucket, prefixes[i].Prefix)
		if err != nil {
			return nil, err
		}
		prefixes[i].Objects = objects
	}
	return prefixes, nil
}

// DeleteObject removes a single key. A key that is already gone counts as
// deleted.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.api.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *s3types.NoSuchKey
		if errors.As(err, &notFound) {
			return nil
		}
		return wrapAPIError(fmt.Sprintf("DeleteObject(%s/%s)", bucket, key), err)
	}
	return nil
}

func toObject(obj s3types.Object) S3Object {
	var lastModified time.Time
	if obj.LastModified != nil {
		lastModified = *obj.LastModified
	}
	return S3Object{
		Key:          aws.ToString(obj.Key),
		Size:         aws.ToInt64(obj.Size),
		LastModified: lastModified,
		StorageClass: string(obj.StorageClass),
	}
}

// wrapAPIError prefixes err with the operation and, for service errors, the
// API error code.
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
