// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IsTar reports whether path names a plain tar archive.
func IsTar(path string) bool {
	return strings.HasSuffix(path, ".tar")
}

// IsGzip reports whether path names a gzip-compressed file.
func IsGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// ExtractTar unpacks archivePath into destDir and returns the paths of the
// extracted files. Only regular file members are materialized; directories
// are created as needed for nesting and everything else (symlinks, device
// nodes) is skipped. Member names are validated so that no file lands
// outside destDir.
func ExtractTar(archivePath, destDir string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var extracted []string
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive %s: %w", archivePath, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", hdr.Name, err)
		}

		out, err := os.Create(target)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", target, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return nil, fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
		}
		if err := out.Close(); err != nil {
			return nil, fmt.Errorf("failed to close %s: %w", target, err)
		}
		extracted = append(extracted, target)
	}
	return extracted, nil
}

// DecompressGzip inflates path next to itself, naming the output by
// stripping the trailing ".gz", then deletes the compressed original.
// Returns the decompressed path.
func DecompressGzip(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("failed to read gzip header of %s: %w", path, err)
	}
	defer zr.Close()

	target := strings.TrimSuffix(path, ".gz")
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, zr); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", target, err)
	}

	in.Close()
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return target, nil
}

// ExpandArchive turns a downloaded payload into the list of files to
// publish. A ".tar" archive is unpacked and any gzip-compressed members
// are decompressed in place; anything else passes through as a single
// unit. The archive itself is deleted after a successful expansion so it
// is never published.
func ExpandArchive(path, destDir string) ([]string, error) {
	if !IsTar(path) {
		return []string{path}, nil
	}

	members, err := ExtractTar(path, destDir)
	if err != nil {
		return nil, err
	}

	units := make([]string, 0, len(members))
	for _, m := range members {
		if IsGzip(m) {
			plain, err := DecompressGzip(m)
			if err != nil {
				return nil, err
			}
			units = append(units, plain)
			continue
		}
		units = append(units, m)
	}

	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to remove archive %s: %w", path, err)
	}
	return units, nil
}

func safeJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(destDir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive member escapes destination: %s", name)
	}
	return target, nil
}
