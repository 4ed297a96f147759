package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// CheckStateBucket verifies the remote state bucket is reachable with the
// active credentials. Terraform would fail init anyway, but a HeadBucket
// up front turns an opaque init error into a direct one.
func CheckStateBucket(ctx context.Context, client S3API, bucket string) error {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return fmt.Errorf("remote state bucket %q is not reachable: %w", bucket, err)
	}
	return nil
}
