// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

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
	// DefaultMinIOImage is the MinIO server image used for S3 store tests.
	DefaultMinIOImage = "minio/minio:RELEASE.2024-10-13T13-34-11Z"

	// MinIOAccessKey and MinIOSecretKey are the root credentials of the test server.
	MinIOAccessKey = "amc2test"
	MinIOSecretKey = "amc2test-secret"
)

// MinIOContainer is a running MinIO server.
type MinIOContainer struct {
	testcontainers.Container

	// Endpoint is host:port of the S3 API.
	Endpoint string
}

// NewMinIOContainer starts a MinIO server.
func NewMinIOContainer(ctx context.Context) (*MinIOContainer, error) {
	container, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        DefaultMinIOImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     MinIOAccessKey,
			"MINIO_ROOT_PASSWORD": MinIOSecretKey,
		},
		Cmd: []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").
			WithStartupTimeout(60 * time.Second),
	})
	if err != nil {
		return nil, err
	}

	endpoint, err := hostPort(ctx, container, "9000/tcp")
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, err
	}
	return &MinIOContainer{Container: container, Endpoint: endpoint}, nil
}

// CreateBucket creates a bucket with the mc client shipped in the image.
func (c *MinIOContainer) CreateBucket(ctx context.Context, bucket string) error {
	cmds := [][]string{
		{"mc", "alias", "set", "local", "http://localhost:9000", MinIOAccessKey, MinIOSecretKey},
		{"mc", "mb", "--ignore-existing", "local/" + bucket},
	}
	for _, cmd := range cmds {
		code, _, err := c.Exec(ctx, cmd)
		if err != nil {
			return fmt.Errorf("exec %v: %w", cmd, err)
		}
		if code != 0 {
			return fmt.Errorf("exec %v: exit code %d", cmd, code)
		}
	}
	return nil
}

// URL returns an s3:// store URL for bucket/prefix.
func (c *MinIOContainer) URL(bucket, prefix string) string {
	u := "s3://" + c.Endpoint + "/" + bucket
	if prefix != "" {
		u += "/" + prefix
	}
	return u
}
