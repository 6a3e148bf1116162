// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

func TestLoadConfigFromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("DEST_BUCKET", "omics-dest")
	t.Setenv("SCRATCH_PATH", "/scratch")
	t.Setenv("DOWNLOAD_MAX_ATTEMPTS", "5")
	t.Setenv("TRANSIENT_UPLOAD_CODE", "SlowDown")

	BindEnvFromStruct(EnvDumpPrefix)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "omics-dest", cfg.Transfer.DestBucket)
	assert.Equal(t, "/scratch", cfg.Transfer.ScratchRoot)
	assert.Equal(t, 5, cfg.Transfer.DownloadMaxAttempts)
	assert.Equal(t, "SlowDown", cfg.Transfer.TransientUploadCode)

	// Unset knobs fall back to defaults.
	assert.Equal(t, 2*time.Hour, cfg.Transfer.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Transfer.ConnectTimeout)
	assert.Equal(t, ".tsv", cfg.Discovery.ManifestSuffix)
}

func TestLoadConfigMissingBucketFails(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SCRATCH_PATH", "/scratch")
	BindEnvFromStruct(EnvDumpPrefix)

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestWriteIniRoundTrip(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set(DestBucket, "bkt")
	viper.Set(ScratchPath, "/s")
	viper.Set(TransientUploadCode, "InvalidPart")

	path := filepath.Join(t.TempDir(), "test.ini")
	require.NoError(t, WriteIniFromStruct(path, "prod"))

	cfg, err := ini.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Section("DEFAULT").Key("current_environment").String())

	viper.Reset()
	require.NoError(t, loadIniSectionIntoViper(cfg, "prod"))
	assert.Equal(t, "bkt", viper.GetString(DestBucket))
	assert.Equal(t, "/s", viper.GetString(ScratchPath))
}

func TestUpdateIniAddsTimestamp(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set(DestBucket, "bkt")

	path := filepath.Join(t.TempDir(), "test.ini")
	require.NoError(t, WriteIniFromStruct(path, "prod"))

	viper.Set(DestBucket, "bkt2")
	require.NoError(t, UpdateIniFromStruct(path, "prod"))

	cfg, err := ini.Load(path)
	require.NoError(t, err)
	sec := cfg.Section("prod")
	assert.Equal(t, "bkt2", sec.Key(DestBucket).String())
	assert.True(t, sec.HasKey(UpdatedEnvKey))
}
