// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ncsa/omics-ingest-sdk/sdk/config"
)

func TestS3ClientRoundTrip(t *testing.T) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	endpoint := os.Getenv("AWS_ENDPOINT_URL")
	bucket := os.Getenv("TEST_BUCKET")

	if accessKey == "" || secretKey == "" || bucket == "" {
		t.Skip("Missing env vars, skipping integration test.")
	}

	cfg := config.Config{
		S3: config.S3Config{
			AccessKey:   accessKey,
			SecretKey:   secretKey,
			Region:      os.Getenv("AWS_REGION"),
			EndpointURL: endpoint,
		},
	}
	cfg.ApplyDefaults()

	ctx := context.Background()

	client, err := config.NewS3Client(ctx, cfg.S3, cfg.Transfer)
	if err != nil {
		t.Fatalf("failed to init S3 client: %v", err)
	}

	local := filepath.Join(t.TempDir(), "roundtrip.bin")
	if err := os.WriteFile(local, []byte("integration payload"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	f, err := os.Open(local)
	if err != nil {
		t.Fatalf("failed to open test file: %v", err)
	}
	defer f.Close()

	key := "integration-test/roundtrip.bin"
	if _, err := client.UploadFile(ctx, bucket, key, f, nil); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	files, err := client.ListFilesAll(ctx, bucket, "integration-test/")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected at least one object under the test prefix")
	}

	staged := filepath.Join(t.TempDir(), "staged.bin")
	if err := client.DownloadFile(ctx, bucket, key, staged); err != nil {
		t.Fatalf("download failed: %v", err)
	}
	got, err := os.ReadFile(staged)
	if err != nil {
		t.Fatalf("failed to read staged file: %v", err)
	}
	if string(got) != "integration payload" {
		t.Fatalf("round trip mismatch: %q", got)
	}

	t.Logf("OK, %d objects under prefix", len(files))
}
