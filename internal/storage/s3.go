package storage

import (
	"alcyxob/coaching-app/internal/config"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// s3Storage implements MediaStorage using an S3-compatible backend.
type s3Storage struct {
	presignClient *s3.PresignClient // Special client for generating presigned URLs
	bucketName    string
	expires       time.Duration
	logger        *zap.Logger
}

// NewS3Storage creates the media storage for the configured bucket.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (MediaStorage, error) {
	// S3-compatible endpoints (MinIO, DigitalOcean Spaces) need a custom resolver.
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// fall back to default AWS endpoint resolution
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	// Load AWS configuration with static credentials from config
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		logger.Error("failed to load AWS SDK config for S3", zap.Error(err))
		return nil, err
	}

	// Create the S3 client
	// Force path-style addressing required by most S3-compatible services (like MinIO)
	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = true // IMPORTANT for S3-compatible like MinIO!
	})

	expires := cfg.PresignExpiry
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	logger.Info("S3 media storage initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.BucketName),
		zap.Duration("presignExpiry", expires),
	)

	// Create the S3 Presign Client from the regular client
	return &s3Storage{
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
		expires:       expires,
		logger:        logger,
	}, nil
}

// PresignedDownloadURL creates a temporary URL for downloading (GET).
func (s *s3Storage) PresignedDownloadURL(ctx context.Context, objectKey string) (string, error) {
	presignParams := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}

	req, err := s.presignClient.PresignGetObject(ctx, presignParams, s3.WithPresignExpires(s.expires))
	if err != nil {
		s.logger.Error("failed to generate presigned GET URL", zap.String("key", objectKey), zap.Error(err))
		return "", err
	}

	// The URL carries the signature and expiry as query parameters
	return req.URL, nil
}
