// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ncsa/omics-ingest-sdk/sdk/services/pipeline"
)

const runKeyPrefix = "ingest_"

// RunKey derives the stable submission key for a manifest entry.
func RunKey(fileID string) string {
	return runKeyPrefix + fileID
}

// ParseManifest reads a tab-separated manifest with a header row and
// returns its usable entries. Rows are tolerated, not rejected:
// - rows missing file_id or urls are skipped
// - an unparsable size becomes -1 (progress reporting is then disabled)
// - a missing or "NA" checksum becomes empty (verification is skipped)
func ParseManifest(r io.Reader) ([]pipeline.ManifestEntry, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var entries []pipeline.ManifestEntry
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest row: %w", err)
		}

		fileID := field(row, "file_id")
		url := field(row, "urls")
		if fileID == "" || url == "" {
			continue
		}

		size := int64(-1)
		if raw := field(row, "size"); raw != "" {
			if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
				size = v
			}
		}

		md5 := field(row, "md5")
		if strings.EqualFold(md5, "NA") {
			md5 = ""
		}

		// Best effort: an unparsable URL leaves the prefix empty and the
		// pipeline rejects the entry when it runs.
		prefix, _ := pipeline.DerivePathPrefix(url)

		entries = append(entries, pipeline.ManifestEntry{
			FileID:            fileID,
			SampleID:          field(row, "sample_id"),
			URL:               url,
			MD5:               md5,
			Size:              size,
			DestinationPrefix: prefix,
		})
	}
	return entries, nil
}
