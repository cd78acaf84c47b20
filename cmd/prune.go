package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/utils/clock"

	awsclient "tasnim.dev/deploy-reaper/internal/aws"
	"tasnim.dev/deploy-reaper/internal/config"
	"tasnim.dev/deploy-reaper/internal/constants"
	"tasnim.dev/deploy-reaper/internal/logger"
	"tasnim.dev/deploy-reaper/internal/metrics"
	"tasnim.dev/deploy-reaper/internal/retention"
	"tasnim.dev/deploy-reaper/internal/utils"
)

type pruneOptions struct {
	days         float64
	keep         int
	useKeep      bool
	matchAll     bool
	dryRun       bool
	buckets      []string
	abortOnError bool
	metricsFile  string
}

// policy builds the retention policy selected on the command line.
func (o pruneOptions) policy(clk clock.PassiveClock) (retention.Policy, error) {
	if o.useKeep {
		if o.matchAll {
			return nil, errors.New("--match-all only applies to the age policy (--days)")
		}
		p, err := retention.NewCountPolicy(o.keep)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	mode := retention.MatchAny
	if o.matchAll {
		mode = retention.MatchAll
	}
	p, err := retention.NewAgePolicy(o.days, mode, clk)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func NewPruneCmd() *cobra.Command {
	var common commonFlags
	var opts pruneOptions
	var bucketPrefix string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old deployment directories from app buckets",
		Long: `Scan every bucket matching the bucket prefix, select deployment
directories (first path segment of each key) under the chosen retention
policy and delete their objects.

The age policy (--days) removes directories holding objects older than the
given number of days. The count policy (--keep) keeps the most recently
updated directories and removes the rest.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			log, err := logger.New(logger.Config{
				Level:  cfg.LogLevelOr(common.logLevel),
				Format: cfg.LogFormatOr(common.logFormat),
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			opts.useKeep = cmd.Flags().Changed("keep")
			policy, err := opts.policy(clock.RealClock{})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			storeOpts := common.storageOptions(cfg)
			store, awsCfg, err := awsclient.NewS3Storage(ctx, storeOpts)
			if err != nil {
				return fmt.Errorf("initializing storage client: %w", err)
			}

			log.Info().
				Str("account", awsclient.AccountID(ctx, awsCfg, storeOpts)).
				Str("region", awsCfg.Region).
				Str("endpoint", storeOpts.Endpoint).
				Str("policy", policy.Name()).
				Bool("dry_run", opts.dryRun).
				Msg("starting retention run")

			rec := metrics.NewRecorder()
			runner := retention.NewRunner(store, policy, retention.Options{
				BucketPrefix: cfg.BucketPrefixOr(bucketPrefix),
				Buckets:      opts.buckets,
				DryRun:       opts.dryRun,
				AbortOnError: opts.abortOnError,
				Concurrency:  cfg.Workers(concurrency),
			}, log, rec, clock.RealClock{})

			report, runErr := runner.Run(ctx)
			if report != nil {
				printSummary(cmd.OutOrStdout(), report)
			}

			if opts.metricsFile != "" {
				if err := rec.WriteTextfile(opts.metricsFile); err != nil {
					log.Error().Err(err).Msg("could not write metrics")
				}
			}

			if runErr != nil {
				return fmt.Errorf("retention run aborted: %w", runErr)
			}
			return runFailure(report)
		},
	}

	common.register(cmd)
	cmd.Flags().Float64VarP(&opts.days, "days", "d", constants.DefaultRetentionDays, "Delete directories with objects older than this many days (fractional allowed)")
	cmd.Flags().IntVarP(&opts.keep, "keep", "k", 0, "Keep only this many most recently updated directories per bucket")
	cmd.MarkFlagsMutuallyExclusive("days", "keep")
	cmd.Flags().BoolVar(&opts.matchAll, "match-all", false, "With --days, require every object of a directory to be old")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report what would be deleted without deleting anything")
	cmd.Flags().StringSliceVarP(&opts.buckets, "bucket", "b", nil, "Process only these buckets instead of discovering them")
	cmd.Flags().StringVar(&bucketPrefix, "bucket-prefix", "", "Bucket name prefix used for discovery (default \""+constants.DefaultBucketPrefix+"\")")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of buckets processed in parallel")
	cmd.Flags().BoolVar(&opts.abortOnError, "abort-on-error", false, "Stop at the first bucket that cannot be evaluated instead of skipping it")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics in node-exporter textfile format to this path")

	return cmd
}

// runFailure turns incomplete work into the command's error, so the process
// exits non-zero. Buckets skipped during evaluation are only reported.
func runFailure(report *retention.Report) error {
	var msgs []string
	if failed := report.DeletionErrors(); len(failed) > 0 {
		msgs = append(msgs, utils.Count(len(failed), "object", "objects")+" could not be deleted")
	}
	if failed := report.GroupErrors(); len(failed) > 0 {
		msgs = append(msgs, utils.Count(len(failed), "group", "groups")+" could not be processed")
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, ", "))
}

func printSummary(w io.Writer, report *retention.Report) {
	verb := "deleted"
	if report.DryRun {
		verb = "would delete"
	}

	if len(report.Buckets) == 0 {
		fmt.Fprintln(w, "No matching buckets.")
		return
	}

	for _, b := range report.Buckets {
		if b.Err != nil {
			fmt.Fprintf(w, "%s: skipped: %v\n", b.Bucket, b.Err)
			continue
		}
		n := b.Deleted
		if report.DryRun {
			n = b.Matched
		}
		fmt.Fprintf(w, "%s: %s eligible, %s %s\n",
			b.Bucket, utils.Count(len(b.Groups), "directory", "directories"), verb, utils.Count(n, "object", "objects"))
		for _, g := range b.Groups {
			fmt.Fprintf(w, "  - %s\n", g)
		}
		for _, err := range b.Errors {
			fmt.Fprintf(w, "  ! %v\n", err)
		}
	}
}
