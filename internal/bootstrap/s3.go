package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/buildboard/buildboard-backend/config"
)

// OpenS3 builds an S3 client from the default credential chain. It returns
// nil, nil when no bucket is configured. A custom endpoint (MinIO and the
// like) switches to path-style addressing.
func OpenS3(ctx context.Context, sc config.StorageConfig) (*s3.Client, error) {
	if sc.S3Bucket == "" {
		return nil, nil
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(sc.S3Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if sc.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(sc.S3Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
