// minio.go - Receipt image archive on MinIO / S3

package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ReceiptArchive uploads receipt images and returns a bucket/object reference
type ReceiptArchive struct {
	client *minio.Client
	bucket string
}

// NewReceiptArchive connects to endpoint and checks the bucket exists
func NewReceiptArchive(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*ReceiptArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}
	return &ReceiptArchive{client: client, bucket: bucket}, nil
}

// ObjectName builds {YYYY}/{MM}/{userID}_{uuid}{ext}
func ObjectName(now time.Time, userID, ext string) string {
	return fmt.Sprintf("%d/%02d/%s_%s%s", now.Year(), now.Month(), userID, uuid.New().String(), ext)
}

// Store uploads data and returns "bucket/object"
func (a *ReceiptArchive) Store(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	objectName := ObjectName(time.Now(), userID, FileExtension(contentType))

	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}
	return fmt.Sprintf("%s/%s", a.bucket, objectName), nil
}

// FileExtension maps a content type to a file extension
func FileExtension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
