package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	awsclient "tasnim.dev/deploy-reaper/internal/aws"
	"tasnim.dev/deploy-reaper/internal/config"
	"tasnim.dev/deploy-reaper/internal/retention"
	"tasnim.dev/deploy-reaper/internal/utils"
)

func NewBucketsCmd() *cobra.Command {
	var common commonFlags
	var bucketPrefix string
	var explicit []string

	cmd := &cobra.Command{
		Use:          "buckets",
		Short:        "List the buckets a prune run would process",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			store, _, err := awsclient.NewS3Storage(cmd.Context(), common.storageOptions(cfg))
			if err != nil {
				return fmt.Errorf("initializing storage client: %w", err)
			}

			buckets, err := store.S3.ListBuckets(cmd.Context())
			if err != nil {
				return err
			}
			names := make([]string, 0, len(buckets))
			created := make(map[string]time.Time, len(buckets))
			for _, b := range buckets {
				names = append(names, b.Name)
				created[b.Name] = b.CreatedAt
			}

			prefix := cfg.BucketPrefixOr(bucketPrefix)
			footer := fmt.Sprintf("matching %q", prefix)
			if len(explicit) > 0 {
				footer = "selected"
			}
			printBuckets(cmd.OutOrStdout(), retention.SelectBuckets(names, explicit, prefix), created, footer)
			return nil
		},
	}

	common.register(cmd)
	cmd.Flags().StringVar(&bucketPrefix, "bucket-prefix", "", "Bucket name prefix used for discovery")
	cmd.Flags().StringSliceVarP(&explicit, "bucket", "b", nil, "Show only these buckets instead of discovering them")

	return cmd
}

// printBuckets lists the selected buckets with their creation time. Buckets
// absent from the account listing print a dash.
func printBuckets(w io.Writer, selected []string, created map[string]time.Time, footer string) {
	for _, name := range selected {
		fmt.Fprintf(w, "%-50s %s\n", name, utils.TimeOrDash(created[name], utils.DateTimeSec))
	}
	fmt.Fprintf(w, "%s %s\n", utils.Count(len(selected), "bucket", "buckets"), footer)
}
