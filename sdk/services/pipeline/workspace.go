// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ncsa/omics-ingest-sdk/sdk/utils"
)

// Workspace is the scratch directory for one manifest entry. Callers must
// Close it, normally via defer, so that local capacity is reclaimed on
// every exit path including failures.
type Workspace struct {
	Dir string
}

// NewWorkspace creates a fresh directory under root. The random suffix
// keeps concurrent entries for the same file id from colliding.
func NewWorkspace(root, fileID string) (*Workspace, error) {
	if root == "" {
		return nil, fmt.Errorf("missing scratch root")
	}
	dir := filepath.Join(root, fileID+"_"+utils.UUIDv4NoDash())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{Dir: dir}, nil
}

// Join resolves a file name inside the workspace.
func (w *Workspace) Join(name string) string {
	return filepath.Join(w.Dir, name)
}

// Close removes the workspace and everything in it.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.Dir)
}
