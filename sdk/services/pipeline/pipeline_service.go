// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"

	"github.com/ncsa/omics-ingest-sdk/sdk/config"
	"github.com/ncsa/omics-ingest-sdk/sdk/events"
	"github.com/ncsa/omics-ingest-sdk/sdk/utils"
)

// PipelineService runs the download, verify, expand and publish sequence
// for manifest entries.
type PipelineService struct {
	downloader *utils.Downloader
	uploader   *utils.Uploader
	conf       config.TransferConfig
	sink       events.Sink
}

func NewPipelineService(ctx context.Context, conf config.Config, sink events.Sink) (*PipelineService, error) {
	if sink == nil {
		sink = events.Nop{}
	}

	s3c, err := config.NewS3Client(ctx, conf.S3, conf.Transfer)
	if err != nil {
		return nil, fmt.Errorf("S3 init failed: %w", err)
	}

	source := config.NewSourceHTTPClient(conf.Transfer)

	return &PipelineService{
		downloader: utils.NewDownloader(source, conf.Transfer.DownloadMaxAttempts, sink),
		uploader:   utils.NewUploader(s3c, conf.Transfer.UploadMaxAttempts, conf.Transfer.TransientUploadCode, sink),
		conf:       conf.Transfer,
		sink:       sink,
	}, nil
}
