// Jobmatch - Model Lifecycle and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jobmatch

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMinioImage is the MinIO image used for artifact store tests.
	DefaultMinioImage = "minio/minio:latest"

	// DefaultMinioPort is the S3 API port inside the container.
	DefaultMinioPort = "9000"

	// MinioAccessKey and MinioSecretKey are the root credentials of the test server.
	MinioAccessKey = "jobmatch"
	MinioSecretKey = "jobmatch-secret"
)

// MinioContainer represents a running MinIO server for testing.
type MinioContainer struct {
	testcontainers.Container
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewMinioContainer creates and starts a single-node MinIO server.
func NewMinioContainer(ctx context.Context) (*MinioContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultMinioImage,
		ExposedPorts: []string{DefaultMinioPort + "/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinioAccessKey,
			"MINIO_ROOT_PASSWORD": MinioSecretKey,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(DefaultMinioPort+"/tcp"),
			wait.ForHTTP("/minio/health/live").WithPort(DefaultMinioPort+"/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio container: %w", err)
	}

	ep, err := endpoint(ctx, container, DefaultMinioPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("resolve minio endpoint: %w", err)
	}

	return &MinioContainer{
		Container: container,
		Endpoint:  ep,
		AccessKey: MinioAccessKey,
		SecretKey: MinioSecretKey,
	}, nil
}
