// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tomtom215/jobmatch/internal/apperr"
)

// MinioConfig holds S3-compatible connection settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps artifacts as objects in a single bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects and creates the bucket if it does not exist.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	s := &MinioStore{client: client, bucket: cfg.Bucket}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "artifacts.ensureBucket", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put implements Store.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	k, err := cleanKey("artifacts.Put", key)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, s.bucket, k, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "artifacts.Put", err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, k), nil
}

// Get implements Store.
func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := cleanKey("artifacts.Get", key)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, k, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "artifacts.Get", err)
	}
	defer func() { _ = obj.Close() }() //nolint:errcheck // error on close after read is not actionable

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, apperr.E(apperr.KindNotFound, "artifacts.Get", "no artifact %s in bucket %s", k, s.bucket)
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "artifacts.Get", err)
	}
	return data, nil
}

// Exists implements Store.
func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	k, err := cleanKey("artifacts.Exists", key)
	if err != nil {
		return false, err
	}
	if _, err := s.client.StatObject(ctx, s.bucket, k, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, apperr.Wrap(apperr.KindUnavailable, "artifacts.Exists", err)
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
