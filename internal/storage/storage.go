package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// MediaStorage hands out temporary read links to catalog media (exercise demo
// videos, dish images). Uploading media is done by other services.
type MediaStorage interface {
	// PresignedDownloadURL creates a temporary URL that allows GET requests
	// for viewing an object directly from the storage provider.
	PresignedDownloadURL(ctx context.Context, objectKey string) (string, error)
}
