package cmd

import (
	"github.com/spf13/cobra"

	awsclient "tasnim.dev/deploy-reaper/internal/aws"
	"tasnim.dev/deploy-reaper/internal/config"
)

// commonFlags are accepted by every command that talks to storage.
type commonFlags struct {
	profile   string
	region    string
	endpoint  string
	logLevel  string
	logFormat string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.profile, "profile", "p", "", "AWS profile to use")
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "AWS region to use")
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "", "Alternate S3 endpoint URL, e.g. LocalStack or MinIO")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&f.logFormat, "log-format", "", "Log format (console, json)")
}

func (f *commonFlags) storageOptions(cfg *config.Config) awsclient.StorageOptions {
	profile, region := cfg.Merge(f.profile, f.region)
	return awsclient.StorageOptions{
		Profile:  profile,
		Region:   region,
		Endpoint: cfg.EndpointOr(f.endpoint),
	}
}
