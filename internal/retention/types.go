package retention

import (
	"context"
	"time"
)

// Object is a single entry from a bucket listing. A zero LastModified means
// the listing did not carry a timestamp for the key.
type Object struct {
	Key          string
	LastModified time.Time
}

// CommonPrefix is a top-level "directory" returned by a delimited listing,
// together with every object stored beneath it.
type CommonPrefix struct {
	Prefix  string
	Objects []Object
}

// Group is one deployment directory within a bucket.
type Group struct {
	ID        string
	Timestamp time.Time
}

// Decision is the output of a policy evaluation for a single bucket.
type Decision struct {
	Bucket string
	// Groups holds bucket-qualified group IDs in evaluation order.
	Groups []string
	// Skipped holds keys that had no last-modified timestamp.
	Skipped []string
}

type BucketLister interface {
	ListBuckets(ctx context.Context) ([]string, error)
}

// ObjectLister returns fully materialized listings; pagination is the
// implementation's concern.
type ObjectLister interface {
	ListObjects(ctx context.Context, bucket, prefix string) ([]Object, error)
	ListCommonPrefixes(ctx context.Context, bucket, delimiter string) ([]CommonPrefix, error)
}

type ObjectDeleter interface {
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Store is everything a retention run needs from object storage.
type Store interface {
	BucketLister
	ObjectLister
	ObjectDeleter
}

// Policy decides which deployment groups of a bucket are eligible for removal.
type Policy interface {
	Name() string
	Evaluate(ctx context.Context, lister ObjectLister, bucket string) (Decision, error)
}
