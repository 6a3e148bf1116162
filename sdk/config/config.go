// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"
)

// Config is the full configuration passed into the SDK (no viper/INI here:
// services receive this struct once at construction and never consult
// process-wide state afterwards).
type Config struct {
	S3        S3Config        `json:"s3"`
	Transfer  TransferConfig  `json:"transfer"`
	Discovery DiscoveryConfig `json:"discovery"`
}

type S3Config struct {
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	SessionToken string `json:"session_token"`
	Region       string `json:"region"`
	EndpointURL  string `json:"endpoint_url"`
}

// TransferConfig tunes the download → expand → upload pipeline.
type TransferConfig struct {
	// ScratchRoot is the directory under which per-entry workspaces are
	// created. Required.
	ScratchRoot string `json:"scratch_root"`
	// DestBucket is the bucket all transfer units are published into. Required.
	DestBucket string `json:"dest_bucket"`

	// HTTP source budgets: connect is short, read is long because payloads
	// may be tens of gigabytes.
	ConnectTimeout time.Duration `json:"connect_timeout"`
	ReadTimeout    time.Duration `json:"read_timeout"`

	DownloadMaxAttempts int `json:"download_max_attempts"`
	UploadMaxAttempts   int `json:"upload_max_attempts"`

	// Multipart settings for the S3 upload manager.
	MultipartThreshold int64 `json:"multipart_threshold"`
	PartSize           int64 `json:"part_size"`
	UploadConcurrency  int   `json:"upload_concurrency"`

	// Backend error code treated as a transient whole-upload failure.
	// The exact signal is environment-specific, so it is configurable
	// rather than hardcoded.
	TransientUploadCode string `json:"transient_upload_code"`
}

type DiscoveryConfig struct {
	// ManifestPrefix is the key prefix scanned for manifest files in the
	// destination bucket.
	ManifestPrefix string `json:"manifest_prefix"`
	// ManifestSuffix selects manifest objects under the prefix.
	ManifestSuffix string `json:"manifest_suffix"`
}

const (
	DefaultConnectTimeout      = 120 * time.Second
	DefaultReadTimeout         = 2 * time.Hour
	DefaultDownloadMaxAttempts = 3
	DefaultUploadMaxAttempts   = 3
	DefaultMultipartThreshold  = 25 * 1024 * 1024
	DefaultPartSize            = 100 * 1024 * 1024
	DefaultUploadConcurrency   = 10
	DefaultTransientUploadCode = "InvalidPart"
	DefaultManifestSuffix      = ".tsv"
)

// ApplyDefaults fills every zero-valued tuning knob. Required fields
// (scratch root, bucket) are left alone: Validate reports those.
func (c *Config) ApplyDefaults() {
	t := &c.Transfer
	if t.ConnectTimeout <= 0 {
		t.ConnectTimeout = DefaultConnectTimeout
	}
	if t.ReadTimeout <= 0 {
		t.ReadTimeout = DefaultReadTimeout
	}
	if t.DownloadMaxAttempts <= 0 {
		t.DownloadMaxAttempts = DefaultDownloadMaxAttempts
	}
	if t.UploadMaxAttempts <= 0 {
		t.UploadMaxAttempts = DefaultUploadMaxAttempts
	}
	if t.MultipartThreshold <= 0 {
		t.MultipartThreshold = DefaultMultipartThreshold
	}
	if t.PartSize <= 0 {
		t.PartSize = DefaultPartSize
	}
	if t.UploadConcurrency <= 0 {
		t.UploadConcurrency = DefaultUploadConcurrency
	}
	if t.TransientUploadCode == "" {
		t.TransientUploadCode = DefaultTransientUploadCode
	}
	if c.Discovery.ManifestSuffix == "" {
		c.Discovery.ManifestSuffix = DefaultManifestSuffix
	}
}

// Validate fails fast on missing required configuration, before any I/O.
func (c *Config) Validate() error {
	if c.Transfer.ScratchRoot == "" {
		return errors.New("missing required scratch root")
	}
	if c.Transfer.DestBucket == "" {
		return errors.New("missing required destination bucket")
	}
	return nil
}

// FromYAMLFile loads a Config from a YAML file, applies defaults and
// validates it.
func FromYAMLFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
