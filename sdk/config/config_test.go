// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{Transfer: TransferConfig{ScratchRoot: "/scratch", DestBucket: "dest"}}
	cfg.ApplyDefaults()

	assert.Equal(t, 120*time.Second, cfg.Transfer.ConnectTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Transfer.ReadTimeout)
	assert.Equal(t, 3, cfg.Transfer.DownloadMaxAttempts)
	assert.Equal(t, 3, cfg.Transfer.UploadMaxAttempts)
	assert.Equal(t, "InvalidPart", cfg.Transfer.TransientUploadCode)
	assert.Equal(t, ".tsv", cfg.Discovery.ManifestSuffix)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{Transfer: TransferConfig{
		ScratchRoot:         "/scratch",
		DestBucket:          "dest",
		ReadTimeout:         time.Minute,
		TransientUploadCode: "SlowDown",
	}}
	cfg.ApplyDefaults()

	assert.Equal(t, time.Minute, cfg.Transfer.ReadTimeout)
	assert.Equal(t, "SlowDown", cfg.Transfer.TransientUploadCode)
}

func TestValidate(t *testing.T) {
	cfg := Config{Transfer: TransferConfig{DestBucket: "dest"}}
	require.Error(t, cfg.Validate())

	cfg = Config{Transfer: TransferConfig{ScratchRoot: "/scratch"}}
	require.Error(t, cfg.Validate())

	cfg = Config{Transfer: TransferConfig{ScratchRoot: "/scratch", DestBucket: "dest"}}
	require.NoError(t, cfg.Validate())
}

func TestFromYAMLFile(t *testing.T) {
	raw := `
s3:
  access_key: ak
  secret_key: sk
  region: us-east-2
  endpoint_url: https://store.example.org
transfer:
  scratch_root: /scratch
  dest_bucket: omics
  download_max_attempts: 5
discovery:
  manifest_prefix: manifests/
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := FromYAMLFile(path)
	require.NoError(t, err)

	assert.Equal(t, "ak", cfg.S3.AccessKey)
	assert.Equal(t, "omics", cfg.Transfer.DestBucket)
	assert.Equal(t, 5, cfg.Transfer.DownloadMaxAttempts)
	assert.Equal(t, 3, cfg.Transfer.UploadMaxAttempts, "unset knobs get defaults")
	assert.Equal(t, "manifests/", cfg.Discovery.ManifestPrefix)
}

func TestFromYAMLFileMissingRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transfer:\n  dest_bucket: omics\n"), 0o644))

	_, err := FromYAMLFile(path)
	require.Error(t, err)
}
