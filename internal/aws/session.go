package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultEndpointRegion is used for custom endpoints when no region is
// configured; S3-compatible test services accept any signing region.
const DefaultEndpointRegion = "us-east-1"

// LoadConfig loads the AWS config for the storage options.
func LoadConfig(ctx context.Context, opts StorageOptions) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	region := opts.Region
	if region == "" && opts.Endpoint != "" {
		region = DefaultEndpointRegion
	}
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.Region == "" && opts.Endpoint != "" {
		cfg.Region = DefaultEndpointRegion
	}
	return cfg, nil
}

// AccountID returns the AWS account the credentials belong to, or "" when it
// cannot be determined. Custom endpoints are never looked up since STS is not
// part of them.
func AccountID(ctx context.Context, cfg aws.Config, opts StorageOptions) string {
	if opts.Endpoint != "" {
		return ""
	}
	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return ""
	}
	return aws.ToString(out.Account)
}
