package storage

import (
	"alcyxob/coaching-app/internal/config"
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestS3Storage_PresignedDownloadURL(t *testing.T) {
	ctx := context.Background()
	media, err := NewS3Storage(ctx, config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "media",
		PresignExpiry:   5 * time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)

	raw, err := media.PresignedDownloadURL(ctx, "dishes/oats.jpg")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/media/dishes/oats.jpg", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3Storage_DefaultExpiry(t *testing.T) {
	ctx := context.Background()
	media, err := NewS3Storage(ctx, config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "media",
	}, zap.NewNop())
	require.NoError(t, err)

	raw, err := media.PresignedDownloadURL(ctx, "exercises/squat.mp4")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}
