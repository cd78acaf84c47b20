package retention

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"tasnim.dev/deploy-reaper/internal/metrics"
)

// Options configures a Runner.
type Options struct {
	// BucketPrefix filters discovered buckets by name.
	BucketPrefix string
	// Buckets, when set, replaces discovery.
	Buckets []string
	DryRun  bool
	// AbortOnError stops the run at the first bucket that fails evaluation
	// instead of skipping it.
	AbortOnError bool
	// Concurrency is the number of buckets processed at once. Values below 1
	// mean sequential processing.
	Concurrency int
}

// BucketReport is the outcome for one bucket.
type BucketReport struct {
	Bucket  string
	Groups  []string
	Skipped []string
	Matched int
	Deleted int
	// Err is the evaluation failure that caused the bucket to be skipped.
	Err error
	// Errors holds per-group listing and per-object deletion failures.
	Errors []error
}

// Report summarizes a run.
type Report struct {
	DryRun  bool
	Buckets []BucketReport
}

// DeletionErrors returns every failed delete call of the run.
func (r *Report) DeletionErrors() []*DeletionError {
	var out []*DeletionError
	for _, b := range r.Buckets {
		for _, err := range b.Errors {
			var de *DeletionError
			if errors.As(err, &de) {
				out = append(out, de)
			}
		}
	}
	return out
}

// GroupErrors returns executor failures other than deletes: groups that could
// not be re-listed, invalid group IDs and cancellation. Their objects were
// never processed.
func (r *Report) GroupErrors() []error {
	var out []error
	for _, b := range r.Buckets {
		for _, err := range b.Errors {
			var de *DeletionError
			if !errors.As(err, &de) {
				out = append(out, err)
			}
		}
	}
	return out
}

// BucketErrors returns the evaluation failures of skipped buckets.
func (r *Report) BucketErrors() []error {
	var out []error
	for _, b := range r.Buckets {
		if b.Err != nil {
			out = append(out, b.Err)
		}
	}
	return out
}

// Runner drives bucket discovery, policy evaluation and deletion.
type Runner struct {
	store   Store
	policy  Policy
	opts    Options
	log     zerolog.Logger
	metrics *metrics.Recorder
	clock   clock.PassiveClock
}

func NewRunner(store Store, policy Policy, opts Options, log zerolog.Logger, rec *metrics.Recorder, clk clock.PassiveClock) *Runner {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Runner{
		store:   store,
		policy:  policy,
		opts:    opts,
		log:     log,
		metrics: rec,
		clock:   clk,
	}
}

// SelectBuckets applies discovery rules to a bucket listing: explicit names
// win over the prefix filter; otherwise names keep listing order.
func SelectBuckets(names, explicit []string, prefix string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	var matched []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			matched = append(matched, name)
		}
	}
	return matched
}

// DiscoverBuckets returns the explicitly configured buckets, or every bucket
// whose name starts with the configured prefix, in listing order.
func (r *Runner) DiscoverBuckets(ctx context.Context) ([]string, error) {
	if len(r.opts.Buckets) > 0 {
		return r.opts.Buckets, nil
	}

	names, err := r.store.ListBuckets(ctx)
	if err != nil {
		return nil, &ListingError{Err: err}
	}

	matched := SelectBuckets(names, nil, r.opts.BucketPrefix)
	r.log.Info().Strs("buckets", matched).Str("prefix", r.opts.BucketPrefix).Msg("discovered buckets")
	return matched, nil
}

// Run processes every discovered bucket. Bucket failures are recorded in the
// report and skipped unless AbortOnError is set, in which case Run returns
// the first such failure together with the partial report.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	defer func() { r.metrics.RunFinished(r.clock.Now()) }()

	buckets, err := r.DiscoverBuckets(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{DryRun: r.opts.DryRun, Buckets: make([]BucketReport, len(buckets))}

	limit := r.opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, bucket := range buckets {
		g.Go(func() error {
			br := r.processBucket(gctx, bucket)
			report.Buckets[i] = br
			if br.Err != nil && r.opts.AbortOnError {
				return fmt.Errorf("bucket %s: %w", bucket, br.Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Runner) processBucket(ctx context.Context, bucket string) BucketReport {
	br := BucketReport{Bucket: bucket}
	log := r.log.With().Str("bucket", bucket).Logger()

	if err := ctx.Err(); err != nil {
		br.Err = err
		return br
	}

	decision, err := r.policy.Evaluate(ctx, r.store, bucket)
	if err != nil {
		log.Error().Err(err).Str("policy", r.policy.Name()).Msg("evaluation failed, skipping bucket")
		br.Err = err
		r.metrics.BucketProcessed(true)
		return br
	}
	br.Groups = decision.Groups
	br.Skipped = decision.Skipped

	for _, key := range decision.Skipped {
		log.Warn().Str("key", key).Msg("object has no last-modified timestamp, ignoring")
	}
	log.Info().
		Str("policy", r.policy.Name()).
		Strs("groups", decision.Groups).
		Msg("deployment groups ready for deletion")
	r.metrics.GroupsEligible(bucket, r.policy.Name(), len(decision.Groups))

	res := NewExecutor(r.store, r.opts.DryRun, log).Execute(ctx, decision.Groups)
	br.Matched = res.Matched
	br.Deleted = res.Deleted
	br.Errors = res.Errors

	failed := 0
	for _, err := range res.Errors {
		var de *DeletionError
		if errors.As(err, &de) {
			failed++
		}
	}
	r.metrics.Objects(bucket, r.opts.DryRun, res.Matched, res.Deleted, failed)
	r.metrics.BucketProcessed(len(res.Errors) > 0)
	return br
}
