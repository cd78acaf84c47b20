package retention

import (
	"errors"
	"fmt"
)

var ErrInvalidGroupID = errors.New("invalid group id")

// ListingError reports a failed listing call. It is not retried.
type ListingError struct {
	Bucket string
	Prefix string
	Err    error
}

func (e *ListingError) Error() string {
	if e.Bucket == "" {
		return fmt.Sprintf("listing buckets: %v", e.Err)
	}
	if e.Prefix == "" {
		return fmt.Sprintf("listing bucket %s: %v", e.Bucket, e.Err)
	}
	return fmt.Sprintf("listing %s/%s: %v", e.Bucket, e.Prefix, e.Err)
}

func (e *ListingError) Unwrap() error { return e.Err }

// EmptyGroupError means a delimited listing returned a common prefix with no
// objects under it, i.e. the listing is inconsistent.
type EmptyGroupError struct {
	Bucket string
	Prefix string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("empty group: common prefix %s/%s has no objects", e.Bucket, e.Prefix)
}

// DeletionError reports a single object that could not be deleted.
type DeletionError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("deleting %s/%s: %v", e.Bucket, e.Key, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }
