// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"strings"
)

// MD5Digest accumulates an MD5 checksum over a byte stream. It implements
// io.Writer so the downloader can feed it each chunk in the same pass that
// writes the chunk to disk; the file is never re-read for verification.
type MD5Digest struct {
	h hash.Hash
	n int64
}

func NewMD5Digest() *MD5Digest {
	return &MD5Digest{h: md5.New()}
}

func (d *MD5Digest) Write(p []byte) (int, error) {
	n, err := d.h.Write(p)
	d.n += int64(n)
	return n, err
}

// Bytes returns the number of bytes written so far.
func (d *MD5Digest) Bytes() int64 {
	return d.n
}

// Sum returns the digest so far as lowercase hex.
func (d *MD5Digest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Matches compares the digest to an expected hex string, case-insensitively.
func (d *MD5Digest) Matches(expected string) bool {
	return DigestsEqual(d.Sum(), expected)
}

// DigestsEqual reports whether two hex digests denote the same checksum.
func DigestsEqual(got, expected string) bool {
	return strings.EqualFold(got, expected)
}
