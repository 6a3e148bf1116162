// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"

	"github.com/ncsa/omics-ingest-sdk/sdk/config"
	"github.com/ncsa/omics-ingest-sdk/sdk/services/pipeline"
)

// Submitter receives one unit of work per newly discovered manifest
// entry. The run key is stable per file id so resubmission across scans
// can be deduplicated by the caller's orchestrator.
type Submitter interface {
	Submit(ctx context.Context, runKey string, entry pipeline.ManifestEntry) error
}

// ManifestStore is the store-facing surface the scanner needs.
// *config.S3Client satisfies it.
type ManifestStore interface {
	ListFilesAll(ctx context.Context, bucket, prefix string) ([]config.S3File, error)
	DownloadFile(ctx context.Context, bucket, key, localPath string) error
}

// ScanResult summarizes one scan pass.
type ScanResult struct {
	Manifests int
	Submitted []string
	Skipped   int
}
