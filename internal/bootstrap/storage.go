package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/folio-dash/folio-backend/config"
	"github.com/folio-dash/folio-backend/internal/media"
)

// OpenStorage builds the S3-compatible image store. Endpoint and PathStyle
// cover MinIO and other non-AWS providers.
func OpenStorage(ctx context.Context, cfg *config.StorageConfig) (*media.S3Store, error) {
	awsConf, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("aws config load: %w", err)
	}

	client := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return media.NewS3Store(client, cfg.Bucket, cfg.Prefix, cfg.PublicURL), nil
}
