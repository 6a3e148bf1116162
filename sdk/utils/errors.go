// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"errors"
	"fmt"
)

// ErrChecksumMismatch marks an integrity failure: the payload arrived in
// full but its digest does not match the manifest. Retrying cannot help,
// so it is surfaced distinctly from transient transfer errors.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// DownloadExhaustedError reports that every download attempt failed
// transiently and the retry budget is spent.
type DownloadExhaustedError struct {
	FileID   string
	Attempts int
	Last     error
}

func (e *DownloadExhaustedError) Error() string {
	return fmt.Sprintf("download of %s failed after %d attempts: %v", e.FileID, e.Attempts, e.Last)
}

func (e *DownloadExhaustedError) Unwrap() error {
	return e.Last
}

// UploadExhaustedError reports that the transient upload condition
// persisted through every attempt.
type UploadExhaustedError struct {
	Key      string
	Attempts int
	Last     error
}

func (e *UploadExhaustedError) Error() string {
	return fmt.Sprintf("upload of %s failed after %d attempts: %v", e.Key, e.Attempts, e.Last)
}

func (e *UploadExhaustedError) Unwrap() error {
	return e.Last
}
