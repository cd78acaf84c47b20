package retention

import (
	"context"

	"github.com/rs/zerolog"
)

// ObjectStore is the listing and deletion surface the executor needs.
type ObjectStore interface {
	ObjectLister
	ObjectDeleter
}

// Executor removes the objects of eligible groups. In dry-run mode it only
// reports what it would delete and never calls DeleteObject.
type Executor struct {
	store  ObjectStore
	dryRun bool
	log    zerolog.Logger
}

func NewExecutor(store ObjectStore, dryRun bool, log zerolog.Logger) *Executor {
	return &Executor{store: store, dryRun: dryRun, log: log}
}

// Result summarizes an Execute call.
type Result struct {
	// Matched is the number of objects found under the groups.
	Matched int
	// Deleted is the number of objects actually removed.
	Deleted int
	// Errors holds *ListingError and *DeletionError values, plus invalid group
	// IDs and context cancellation.
	Errors []error
}

func (r *Result) merge(other Result) {
	r.Matched += other.Matched
	r.Deleted += other.Deleted
	r.Errors = append(r.Errors, other.Errors...)
}

// Execute re-lists every group and deletes its objects one by one, in listing
// order. Failures are collected and do not stop the remaining work.
func (e *Executor) Execute(ctx context.Context, groupIDs []string) Result {
	var res Result
	for _, id := range groupIDs {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, err)
			return res
		}
		res.merge(e.executeGroup(ctx, id))
	}
	return res
}

func (e *Executor) executeGroup(ctx context.Context, id string) Result {
	var res Result

	bucket, segment, err := SplitGroupID(id)
	if err != nil {
		res.Errors = append(res.Errors, err)
		return res
	}

	objects, err := e.store.ListObjects(ctx, bucket, segment)
	if err != nil {
		res.Errors = append(res.Errors, &ListingError{Bucket: bucket, Prefix: segment, Err: err})
		return res
	}

	log := e.log.With().Str("bucket", bucket).Str("group", segment).Logger()
	for _, obj := range objects {
		// A plain prefix listing for "deploy1" also returns "deploy10/...".
		if FirstSegment(obj.Key) != segment {
			continue
		}
		res.Matched++

		if e.dryRun {
			log.Info().Str("key", obj.Key).Msg("dry-run: would delete object")
			continue
		}

		if err := e.store.DeleteObject(ctx, bucket, obj.Key); err != nil {
			log.Error().Err(err).Str("key", obj.Key).Msg("delete failed")
			res.Errors = append(res.Errors, &DeletionError{Bucket: bucket, Key: obj.Key, Err: err})
			continue
		}
		res.Deleted++
		log.Info().Str("key", obj.Key).Msg("deleted object")
	}
	return res
}
