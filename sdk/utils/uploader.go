// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/smithy-go"

	"github.com/ncsa/omics-ingest-sdk/sdk/config"
	"github.com/ncsa/omics-ingest-sdk/sdk/events"
)

// ObjectUploader is the store-facing surface the retrying uploader needs.
// *config.S3Client satisfies it.
type ObjectUploader interface {
	UploadFile(ctx context.Context, bucket, key string, file *os.File, hook *config.ProgressHook) (interface{}, error)
}

// Uploader pushes local files to the object store, retrying the whole
// upload when the backend reports its transient part-corruption code.
// Network-level flakiness is already absorbed by the store client's
// adaptive retries, so every other error is treated as terminal here.
type Uploader struct {
	store         ObjectUploader
	maxAttempts   int
	transientCode string
	sink          events.Sink
}

func NewUploader(store ObjectUploader, maxAttempts int, transientCode string, sink events.Sink) *Uploader {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if transientCode == "" {
		transientCode = config.DefaultTransientUploadCode
	}
	if sink == nil {
		sink = events.Nop{}
	}
	return &Uploader{store: store, maxAttempts: maxAttempts, transientCode: transientCode, sink: sink}
}

// Upload publishes the file at path to bucket/key. The source file is
// reopened for each attempt so multipart state never leaks across
// retries. Exhaustion yields an UploadExhaustedError carrying the key and
// the attempt count.
func (u *Uploader) Upload(ctx context.Context, bucket, key, path string) error {
	var last error
	for attempt := 1; attempt <= u.maxAttempts; attempt++ {
		err := u.attempt(ctx, bucket, key, path)
		if err == nil {
			return nil
		}
		if !u.isTransient(err) {
			return fmt.Errorf("failed to upload %s: %w", key, err)
		}

		last = err
		if attempt < u.maxAttempts {
			u.sink.Report(events.Event{
				Kind:        events.KindRetry,
				Phase:       events.PhaseUpload,
				FileID:      key,
				Attempt:     attempt,
				MaxAttempts: u.maxAttempts,
				Message:     "upload attempt failed, retrying",
				Err:         err,
			})
		}
	}
	return &UploadExhaustedError{Key: key, Attempts: u.maxAttempts, Last: last}
}

func (u *Uploader) attempt(ctx context.Context, bucket, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	hook := &config.ProgressHook{
		OnProgress: func(key string, written, total int64) {
			var pct int
			if total > 0 {
				pct = int(written * 100 / total)
			}
			u.sink.Report(events.Event{
				Kind:    events.KindProgress,
				Phase:   events.PhaseUpload,
				FileID:  key,
				Percent: pct,
				Bytes:   written,
			})
		},
	}

	_, err = u.store.UploadFile(ctx, bucket, key, f, hook)
	return err
}

// isTransient matches the single backend error code worth a full-upload
// retry. The default, "InvalidPart", is what S3-compatible stores return
// when a multipart part arrives corrupted.
func (u *Uploader) isTransient(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == u.transientCode
}
