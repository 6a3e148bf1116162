// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

// ManifestEntry is one row of a TSV manifest: a remote payload to fetch,
// verify and republish.
type ManifestEntry struct {
	FileID   string `json:"file_id"`
	SampleID string `json:"sample_id,omitempty"`
	URL      string `json:"url"`
	MD5      string `json:"md5"`
	// Size is advisory (progress reporting only); -1 when the manifest
	// does not carry a usable value.
	Size int64 `json:"size"`
	// DestinationPrefix is the store key prefix for the entry's units,
	// normally the URL path minus its last segment. Discovery fills it;
	// when empty the pipeline derives it from URL.
	DestinationPrefix string `json:"destination_prefix,omitempty"`
}

// TransferUnit is one local file destined for the object store. A plain
// payload yields a single unit; a tar archive yields one unit per
// extracted (and decompressed) member.
type TransferUnit struct {
	LocalPath string
	Key       string
}

// ProcessResult reports a fully published entry. Entry is echoed back so
// callers can correlate results with their submissions.
type ProcessResult struct {
	Entry    ManifestEntry
	Uploaded []string
	Bytes    int64
}
