// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ncsa/omics-ingest-sdk/sdk/events"
	"github.com/ncsa/omics-ingest-sdk/sdk/utils"
)

// Process runs one manifest entry end to end:
// - download the payload into a fresh workspace, verifying its MD5
// - expand a ".tar" payload into its members, inflating ".gz" ones
// - publish every unit under the entry's derived key prefix
//
// Uploads are sequential in manifest order. A unit failure aborts the
// remainder but already published objects stay in the store; re-running
// the entry overwrites them idempotently. The workspace is removed on
// every exit path.
func (s *PipelineService) Process(ctx context.Context, entry ManifestEntry) (*ProcessResult, error) {
	if entry.FileID == "" {
		return nil, errors.New("missing required file id")
	}
	if entry.URL == "" {
		return nil, errors.New("missing required source URL")
	}

	prefix := entry.DestinationPrefix
	if prefix == "" {
		var err error
		prefix, err = DerivePathPrefix(entry.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid source URL for %s: %w", entry.FileID, err)
		}
	}

	ws, err := NewWorkspace(s.conf.ScratchRoot, entry.FileID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			s.sink.Report(events.Event{
				Kind:    events.KindWarning,
				Phase:   events.PhaseCleanup,
				FileID:  entry.FileID,
				Message: "failed to remove workspace",
				Err:     cerr,
			})
		}
	}()

	s.sink.Report(events.Event{
		Kind:    events.KindPhaseStarted,
		Phase:   events.PhaseDownload,
		FileID:  entry.FileID,
		Message: "downloading " + entry.URL,
	})

	// The staged file is named after the file id, so archive detection
	// works even when the source URL is opaque (signed URLs, query-string
	// download endpoints).
	dl, err := s.downloader.Download(ctx, utils.DownloadSpec{
		FileID:       entry.FileID,
		URL:          entry.URL,
		ExpectedMD5:  entry.MD5,
		ExpectedSize: entry.Size,
		Destination:  ws.Join(entry.FileID),
	})
	if err != nil {
		s.sink.Report(events.Event{
			Kind:    events.KindFailure,
			Phase:   events.PhaseDownload,
			FileID:  entry.FileID,
			Message: "download failed",
			Err:     err,
		})
		return nil, err
	}
	s.sink.Report(events.Event{
		Kind:    events.KindPhaseDone,
		Phase:   events.PhaseDownload,
		FileID:  entry.FileID,
		Bytes:   dl.Bytes,
		Message: "download verified",
	})

	units, err := utils.ExpandArchive(dl.Path, ws.Dir)
	if err != nil {
		s.sink.Report(events.Event{
			Kind:    events.KindFailure,
			Phase:   events.PhaseExpand,
			FileID:  entry.FileID,
			Message: "archive expansion failed",
			Err:     err,
		})
		return nil, fmt.Errorf("failed to expand %s: %w", entry.FileID, err)
	}

	uploaded := make([]string, 0, len(units))
	for _, unit := range units {
		// Keys carry the member's path relative to the workspace, so
		// nested archive members keep their directories and equal base
		// names in different directories cannot overwrite each other.
		rel, rerr := filepath.Rel(ws.Dir, unit)
		if rerr != nil {
			return nil, fmt.Errorf("unit %s escapes workspace: %w", unit, rerr)
		}
		key := joinKey(prefix, filepath.ToSlash(rel))
		if err := s.uploader.Upload(ctx, s.conf.DestBucket, key, unit); err != nil {
			s.sink.Report(events.Event{
				Kind:    events.KindFailure,
				Phase:   events.PhaseUpload,
				FileID:  entry.FileID,
				Message: fmt.Sprintf("upload of %s failed, %d of %d units published", key, len(uploaded), len(units)),
				Err:     err,
			})
			return nil, err
		}
		uploaded = append(uploaded, key)
		// Free scratch as soon as a unit lands, large archives would
		// otherwise need twice the payload's disk.
		if rerr := os.Remove(unit); rerr != nil {
			s.sink.Report(events.Event{
				Kind:    events.KindWarning,
				Phase:   events.PhaseCleanup,
				FileID:  entry.FileID,
				Message: "failed to remove published unit",
				Err:     rerr,
			})
		}
	}

	s.sink.Report(events.Event{
		Kind:    events.KindSuccess,
		Phase:   events.PhaseUpload,
		FileID:  entry.FileID,
		Bytes:   dl.Bytes,
		Message: fmt.Sprintf("published %d units", len(uploaded)),
	})

	return &ProcessResult{Entry: entry, Uploaded: uploaded, Bytes: dl.Bytes}, nil
}

// DerivePathPrefix maps a source URL to the destination key prefix: the
// URL path minus its last segment, without the leading slash. Objects
// thus mirror the source hierarchy in the destination bucket.
func DerivePathPrefix(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	p := strings.TrimPrefix(u.Path, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i], nil
	}
	return "", nil
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
