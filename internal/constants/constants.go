package constants

// DefaultBucketPrefix is the naming convention for deployment buckets.
const DefaultBucketPrefix = "sure-app"

// DefaultRetentionDays applies when neither --days nor --keep is given.
const DefaultRetentionDays = 30.0
