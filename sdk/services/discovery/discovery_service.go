// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"fmt"

	"github.com/ncsa/omics-ingest-sdk/sdk/config"
	"github.com/ncsa/omics-ingest-sdk/sdk/events"
)

// DiscoveryService watches the destination bucket for TSV manifests and
// turns their rows into submissions for the transfer pipeline.
type DiscoveryService struct {
	store ManifestStore
	conf  config.Config
	sink  events.Sink
}

func NewDiscoveryService(ctx context.Context, conf config.Config, sink events.Sink) (*DiscoveryService, error) {
	if sink == nil {
		sink = events.Nop{}
	}

	s3c, err := config.NewS3Client(ctx, conf.S3, conf.Transfer)
	if err != nil {
		return nil, fmt.Errorf("S3 init failed: %w", err)
	}

	return &DiscoveryService{store: s3c, conf: conf, sink: sink}, nil
}
