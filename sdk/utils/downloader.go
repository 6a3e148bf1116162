// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ncsa/omics-ingest-sdk/sdk/events"
)

// Payloads are read in fixed 1 MiB chunks; each chunk is written to disk
// and fed to the digest in the same pass.
const downloadChunkSize = 1 << 20

type Downloader struct {
	client      *http.Client
	maxAttempts int
	sink        events.Sink
}

func NewDownloader(client *http.Client, maxAttempts int, sink events.Sink) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if sink == nil {
		sink = events.Nop{}
	}
	return &Downloader{client: client, maxAttempts: maxAttempts, sink: sink}
}

type DownloadSpec struct {
	FileID string
	URL    string
	// ExpectedMD5 is the manifest checksum as lowercase or uppercase hex.
	// Empty means the manifest carries none and verification is skipped.
	ExpectedMD5 string
	// ExpectedSize is advisory, used only for progress reporting. Zero or
	// negative disables percentage math without failing the download.
	ExpectedSize int64
	Destination  string
}

type DownloadResult struct {
	Path     string
	Bytes    int64
	MD5      string
	Attempts int
}

// attemptOutcome tags one attempt's result so the retry policy is a pure
// decision over it: Ok | TransientFailure | TerminalFailure.
type attemptOutcome struct {
	result    *DownloadResult
	err       error
	transient bool
}

// Download streams spec.URL into spec.Destination, verifying the MD5
// digest computed over the stream against spec.ExpectedMD5.
//
// Transient body-read failures restart the whole download, up to the
// attempt budget, discarding the partial file between attempts and after
// exhaustion. An HTTP error status is terminal without retry. A digest
// mismatch is also terminal without retry, and the fully downloaded file
// is left in place for the caller to dispose of.
func (d *Downloader) Download(ctx context.Context, spec DownloadSpec) (*DownloadResult, error) {
	var last error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		out := d.attempt(ctx, spec)

		if out.err == nil {
			res := out.result
			res.Attempts = attempt
			if spec.ExpectedMD5 != "" && !DigestsEqual(res.MD5, spec.ExpectedMD5) {
				return nil, fmt.Errorf("%w for %s: expected %s, got %s",
					ErrChecksumMismatch, spec.FileID, spec.ExpectedMD5, res.MD5)
			}
			return res, nil
		}

		if !out.transient {
			return nil, out.err
		}

		last = out.err
		removeIfExists(spec.Destination)
		if attempt < d.maxAttempts {
			d.sink.Report(events.Event{
				Kind:        events.KindRetry,
				Phase:       events.PhaseDownload,
				FileID:      spec.FileID,
				Attempt:     attempt,
				MaxAttempts: d.maxAttempts,
				Message:     "download attempt failed, retrying",
				Err:         out.err,
			})
		}
	}
	return nil, &DownloadExhaustedError{FileID: spec.FileID, Attempts: d.maxAttempts, Last: last}
}

func (d *Downloader) attempt(ctx context.Context, spec DownloadSpec) attemptOutcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
	if err != nil {
		return attemptOutcome{err: fmt.Errorf("invalid source URL: %w", err)}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		// Connection-level failure: reset, refused, timeout.
		return attemptOutcome{err: err, transient: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return attemptOutcome{err: fmt.Errorf("source responded with: %s", resp.Status)}
	}

	total := spec.ExpectedSize
	if total <= 0 {
		total = resp.ContentLength
	}

	out, err := os.Create(spec.Destination)
	if err != nil {
		return attemptOutcome{err: fmt.Errorf("failed to create output file: %w", err)}
	}

	digest := NewMD5Digest()
	buf := make([]byte, downloadChunkSize)
	lastPct := 0

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				return attemptOutcome{err: fmt.Errorf("failed to write output file: %w", werr)}
			}
			_, _ = digest.Write(buf[:n])

			if total > 0 {
				pct := int(digest.Bytes() * 100 / total)
				if pct > 100 {
					pct = 100
				}
				for pct >= lastPct+10 {
					lastPct += 10
					d.sink.Report(events.Event{
						Kind:    events.KindProgress,
						Phase:   events.PhaseDownload,
						FileID:  spec.FileID,
						Percent: lastPct,
						Bytes:   digest.Bytes(),
					})
				}
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			// Mid-body failure: connection reset, read timeout, truncated
			// chunked encoding. The partial file is discarded and the
			// download restarted from scratch.
			out.Close()
			return attemptOutcome{err: readErr, transient: true}
		}
	}

	if err := out.Close(); err != nil {
		return attemptOutcome{err: fmt.Errorf("failed to close output file: %w", err)}
	}

	return attemptOutcome{result: &DownloadResult{
		Path:  spec.Destination,
		Bytes: digest.Bytes(),
		MD5:   digest.Sum(),
	}}
}

func removeIfExists(path string) {
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
}
