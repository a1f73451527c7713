package services

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/username/fintrack/backend/src/security/validation"
)

// UploadURL is a presigned PUT target for a receipt or statement file.
type UploadURL struct {
	URL       string    `json:"url"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UploadService issues V4 signed URLs so clients upload directly to
// the bucket; file bytes never pass through this backend.
type UploadService struct {
	client *gcs.Client
	bucket string
	expiry time.Duration
}

func NewUploadService(client *gcs.Client, bucket string, expiry time.Duration) *UploadService {
	return &UploadService{client: client, bucket: bucket, expiry: expiry}
}

// IssueUploadURL returns a signed PUT URL for an object scoped under
// the user's prefix. The random segment keeps repeated uploads of the
// same filename from colliding.
func (s *UploadService) IssueUploadURL(ctx context.Context, userID int64, filename, contentType string) (*UploadURL, error) {
	clean := validation.CleanLabel(path.Base(filename))
	if clean == "" || clean == "." || clean == "/" {
		return nil, fmt.Errorf("invalid filename %q", filename)
	}

	objectKey := fmt.Sprintf("users/%d/%s/%s", userID, uuid.NewString(), clean)
	expiresAt := time.Now().Add(s.expiry)

	url, err := s.client.Bucket(s.bucket).SignedURL(objectKey, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      http.MethodPut,
		Expires:     expiresAt,
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("sign upload URL for %s: %w", objectKey, err)
	}

	return &UploadURL{URL: url, ObjectKey: objectKey, ExpiresAt: expiresAt}, nil
}
