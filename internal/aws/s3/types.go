package s3

import "time"

type S3Bucket struct {
	Name      string
	CreatedAt time.Time
}

type S3Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	StorageClass string
}

type CommonPrefix struct {
	Prefix  string
	Objects []S3Object
}
