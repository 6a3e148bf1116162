// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package utils

const (
	IniName            = ".omics-ingest.ini"
	IniSource          = "ini_source"
	CurrentEnvironment = "current_environment"
	UpdatedEnvKey      = "updated_environment"

	AwsAccessKeyId     = "aws_access_key_id"
	AwsSecretAccessKey = "aws_secret_access_key"
	AwsSessionToken    = "aws_session_token"
	AwsEndpointUrl     = "aws_endpoint_url"
	AwsRegion          = "aws_region"

	DestBucket     = "dest_bucket"
	ScratchPath    = "scratch_path"
	ManifestPrefix = "manifest_prefix"
	ManifestSuffix = "manifest_suffix"

	ConnectTimeoutSeconds = "connect_timeout_seconds"
	ReadTimeoutSeconds    = "read_timeout_seconds"
	DownloadMaxAttempts   = "download_max_attempts"
	UploadMaxAttempts     = "upload_max_attempts"
	MultipartThreshold    = "multipart_threshold"
	PartSize              = "part_size"
	UploadConcurrency     = "upload_concurrency"
	TransientUploadCode   = "transient_upload_code"
)
