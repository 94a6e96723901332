// Package storage provides the object store for profile images.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"ripple/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// AvatarBucket holds normalized profile avatars.
	AvatarBucket = "avatars"
	// BannerBucket holds profile banner images.
	BannerBucket = "banners"
)

// ObjectStore persists profile images and resolves their public URLs.
type ObjectStore interface {
	// PutAvatar stores a normalized avatar for the profile and returns its
	// public URL. One object per profile: re-uploading replaces it.
	PutAvatar(ctx context.Context, profileID uint, data []byte, contentType string) (string, error)
	// PutBanner stores a banner image for the profile and returns its public URL.
	PutBanner(ctx context.Context, profileID uint, data []byte, contentType string) (string, error)
}

type minioStore struct {
	client    *minio.Client
	publicURL string
}

// NewMinioStore connects to MinIO and ensures the image buckets exist.
func NewMinioStore(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to object store: %w", err)
	}

	store := &minioStore{client: client, publicURL: cfg.MinioPublicURL}

	for _, bucket := range []string{AvatarBucket, BannerBucket} {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket %q: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("failed to create bucket %q: %w", bucket, err)
			}
		}
	}

	return store, nil
}

func (s *minioStore) put(ctx context.Context, bucket, objectName string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s/%s: %w", bucket, objectName, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, objectName), nil
}

func (s *minioStore) PutAvatar(ctx context.Context, profileID uint, data []byte, contentType string) (string, error) {
	return s.put(ctx, AvatarBucket, avatarObjectName(profileID), data, contentType)
}

func (s *minioStore) PutBanner(ctx context.Context, profileID uint, data []byte, contentType string) (string, error) {
	return s.put(ctx, BannerBucket, bannerObjectName(profileID), data, contentType)
}

// Object names are stable per profile so uploads overwrite in place.
func avatarObjectName(profileID uint) string {
	return fmt.Sprintf("profile/%d/avatar.webp", profileID)
}

func bannerObjectName(profileID uint) string {
	return fmt.Sprintf("profile/%d/banner.webp", profileID)
}
