package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"watchlist-backend/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const posterPrefix = "posters"

type PresignedUpload struct {
	PresignedURL string    `json:"presigned_url"`
	PublicURL    string    `json:"public_url"`
	ObjectKey    string    `json:"object_key"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// MinIOService hands out upload URLs for poster images and removes posters
// that were uploaded to the configured bucket.
type MinIOService struct {
	client    *minio.Client
	bucket    string
	publicURL string
	expiry    time.Duration
	logger    *logrus.Logger
}

func NewMinIOService(cfg *config.MinIOConfig, logger *logrus.Logger) (*MinIOService, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"bucket":   cfg.BucketName,
		"useSSL":   cfg.UseSSL,
	}).Info("MinIO client initialized successfully")

	service := &MinIOService{
		client:    minioClient,
		bucket:    cfg.BucketName,
		publicURL: publicBucketURL(cfg.PublicURL, cfg.BucketName),
		expiry:    cfg.PresignExpiry,
		logger:    logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := service.ensureBucket(ctx, cfg.Region); err != nil {
		logger.WithError(err).Warn("Failed to configure poster bucket, continuing")
	}

	return service, nil
}

func (s *MinIOService) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		s.logger.WithField("bucket", s.bucket).Info("Bucket created successfully")
	}

	// Posters are rendered straight from the bucket, so objects under the
	// poster prefix are world readable.
	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": {"AWS": ["*"]},
				"Action": ["s3:GetObject"],
				"Resource": ["arn:aws:s3:::%s/%s/*"]
			}
		]
	}`, s.bucket, posterPrefix)

	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	return nil
}

func (s *MinIOService) GeneratePresignedURL(ctx context.Context, ownerID uuid.UUID, filename string) (*PresignedUpload, error) {
	objectKey := posterObjectKey(ownerID, filename, uuid.New().String()[:8])

	presignedURL, err := s.client.PresignedPutObject(ctx, s.bucket, objectKey, s.expiry)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate presigned URL")
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"objectKey": objectKey,
		"expiry":    s.expiry,
	}).Info("Generated presigned URL")

	return &PresignedUpload{
		PresignedURL: presignedURL.String(),
		PublicURL:    s.publicURL + objectKey,
		ObjectKey:    objectKey,
		ExpiresAt:    time.Now().Add(s.expiry),
	}, nil
}

// OwnsURL reports whether objectURL points into this service's bucket.
func (s *MinIOService) OwnsURL(objectURL string) bool {
	_, ok := objectKeyFromURL(s.publicURL, objectURL)
	return ok
}

func (s *MinIOService) DeleteFile(ctx context.Context, objectURL string) error {
	objectKey, ok := objectKeyFromURL(s.publicURL, objectURL)
	if !ok {
		return fmt.Errorf("poster %q is not stored in bucket %s", objectURL, s.bucket)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.WithField("objectKey", objectKey).Info("Poster deleted from MinIO")
	return nil
}

// publicBucketURL returns "<scheme>://<host>/<bucket>/" for the configured
// public endpoint. Any path on the endpoint is dropped.
func publicBucketURL(publicURL, bucket string) string {
	scheme := "http://"
	if strings.HasPrefix(publicURL, "https://") {
		scheme = "https://"
	}
	host := strings.TrimPrefix(strings.TrimPrefix(publicURL, "https://"), "http://")
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	return scheme + host + "/" + bucket + "/"
}

func posterObjectKey(ownerID uuid.UUID, filename, suffix string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		base = "poster"
	}
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" {
		name = "poster"
	}
	return fmt.Sprintf("%s/%s/%s_%s%s", posterPrefix, ownerID, name, suffix, strings.ToLower(ext))
}

func objectKeyFromURL(bucketURL, objectURL string) (string, bool) {
	if !strings.HasPrefix(objectURL, bucketURL) {
		return "", false
	}
	key := strings.TrimPrefix(objectURL, bucketURL)
	if !strings.HasPrefix(key, posterPrefix+"/") || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
