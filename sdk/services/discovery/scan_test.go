// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncsa/omics-ingest-sdk/sdk/config"
	"github.com/ncsa/omics-ingest-sdk/sdk/events"
	"github.com/ncsa/omics-ingest-sdk/sdk/services/pipeline"
)

// fakeManifestStore serves in-memory objects through the ManifestStore
// surface.
type fakeManifestStore struct {
	objects map[string]string
}

func (s *fakeManifestStore) ListFilesAll(_ context.Context, _ string, prefix string) ([]config.S3File, error) {
	var files []config.S3File
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			files = append(files, config.S3File{Path: key, Name: strings.TrimPrefix(key, prefix)})
		}
	}
	return files, nil
}

func (s *fakeManifestStore) DownloadFile(_ context.Context, _ string, key, localPath string) error {
	content, ok := s.objects[key]
	if !ok {
		return errors.New("no such key: " + key)
	}
	return os.WriteFile(localPath, []byte(content), 0o644)
}

type recordingSubmitter struct {
	keys    []string
	entries []pipeline.ManifestEntry
	failOn  string
}

func (r *recordingSubmitter) Submit(_ context.Context, runKey string, entry pipeline.ManifestEntry) error {
	if runKey == r.failOn {
		return errors.New("submission rejected")
	}
	r.keys = append(r.keys, runKey)
	r.entries = append(r.entries, entry)
	return nil
}

func newScanService(store ManifestStore) *DiscoveryService {
	return &DiscoveryService{
		store: store,
		conf: config.Config{
			Transfer: config.TransferConfig{DestBucket: "dest"},
			Discovery: config.DiscoveryConfig{
				ManifestPrefix: "manifests/",
				ManifestSuffix: ".tsv",
			},
		},
		sink: events.Nop{},
	}
}

func TestScanSubmitsNewEntries(t *testing.T) {
	store := &fakeManifestStore{objects: map[string]string{
		"manifests/batch1.tsv": "file_id\turls\tmd5\tsize\n" +
			"f-1\thttps://assets.example.org/d/a.tar\tabc\t10\n" +
			"f-2\thttps://assets.example.org/d/b.bin\tdef\t20\n",
		"manifests/readme.txt": "not a manifest",
	}}
	sub := &recordingSubmitter{}
	seen := map[string]bool{}

	res, err := newScanService(store).Scan(context.Background(), seen, sub)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Manifests)
	assert.ElementsMatch(t, []string{"ingest_f-1", "ingest_f-2"}, res.Submitted)
	assert.Zero(t, res.Skipped)
	assert.Len(t, sub.entries, 2)
	assert.True(t, seen["ingest_f-1"])
	assert.True(t, seen["ingest_f-2"])
}

func TestScanSkipsSeenEntries(t *testing.T) {
	store := &fakeManifestStore{objects: map[string]string{
		"manifests/batch1.tsv": "file_id\turls\tmd5\tsize\n" +
			"f-1\thttps://assets.example.org/d/a.tar\tabc\t10\n" +
			"f-2\thttps://assets.example.org/d/b.bin\tdef\t20\n",
	}}
	sub := &recordingSubmitter{}
	seen := map[string]bool{"ingest_f-1": true}

	res, err := newScanService(store).Scan(context.Background(), seen, sub)
	require.NoError(t, err)

	assert.Equal(t, []string{"ingest_f-2"}, res.Submitted)
	assert.Equal(t, 1, res.Skipped)
}

func TestScanStopsOnSubmitError(t *testing.T) {
	store := &fakeManifestStore{objects: map[string]string{
		"manifests/batch1.tsv": "file_id\turls\tmd5\tsize\n" +
			"f-1\thttps://assets.example.org/d/a.tar\tabc\t10\n",
	}}
	sub := &recordingSubmitter{failOn: "ingest_f-1"}
	seen := map[string]bool{}

	_, err := newScanService(store).Scan(context.Background(), seen, sub)
	require.Error(t, err)
	assert.False(t, seen["ingest_f-1"], "a rejected submission must stay resubmittable")
}
