// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ncsa/omics-ingest-sdk/sdk/events"
	"github.com/ncsa/omics-ingest-sdk/sdk/services/pipeline"
)

// Scan lists manifest objects under the configured prefix, parses each
// one and submits a run for every entry whose run key has not been seen
// yet. seen is updated in place so the caller can carry it across scans.
func (s *DiscoveryService) Scan(ctx context.Context, seen map[string]bool, sub Submitter) (*ScanResult, error) {
	bucket := s.conf.Transfer.DestBucket
	prefix := s.conf.Discovery.ManifestPrefix
	suffix := s.conf.Discovery.ManifestSuffix

	s.sink.Report(events.Event{
		Kind:    events.KindPhaseStarted,
		Phase:   events.PhaseDiscover,
		Message: fmt.Sprintf("scanning s3://%s/%s for manifests", bucket, prefix),
	})

	files, err := s.store.ListFilesAll(ctx, bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list manifests: %w", err)
	}

	res := &ScanResult{}
	for _, f := range files {
		if suffix != "" && !strings.HasSuffix(f.Path, suffix) {
			continue
		}
		res.Manifests++

		entries, err := s.fetchAndParse(ctx, bucket, f.Path)
		if err != nil {
			s.sink.Report(events.Event{
				Kind:    events.KindWarning,
				Phase:   events.PhaseDiscover,
				Message: "skipping unreadable manifest " + f.Path,
				Err:     err,
			})
			continue
		}

		for _, entry := range entries {
			key := RunKey(entry.FileID)
			if seen[key] {
				res.Skipped++
				continue
			}
			if err := sub.Submit(ctx, key, entry); err != nil {
				return res, fmt.Errorf("failed to submit %s: %w", key, err)
			}
			seen[key] = true
			res.Submitted = append(res.Submitted, key)
		}
	}

	s.sink.Report(events.Event{
		Kind:  events.KindPhaseDone,
		Phase: events.PhaseDiscover,
		Message: fmt.Sprintf("%d manifests scanned, %d entries submitted, %d already seen",
			res.Manifests, len(res.Submitted), res.Skipped),
	})
	return res, nil
}

// fetchAndParse stages the manifest object to a temp file and parses it.
// DownloadFile writes to a local path, so the manifest goes through a
// temp file that is removed before returning.
func (s *DiscoveryService) fetchAndParse(ctx context.Context, bucket, key string) ([]pipeline.ManifestEntry, error) {
	tmp, err := os.CreateTemp("", "manifest-*.tsv")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := s.store.DownloadFile(ctx, bucket, key, tmpPath); err != nil {
		return nil, err
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to reopen manifest: %w", err)
	}
	defer f.Close()

	return ParseManifest(f)
}
