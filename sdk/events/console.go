// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"fmt"
	"io"
	"os"
)

/* ------------ tiny UI sink for single-line progress ------------ */

// Console renders events to a terminal: progress on one overwritten line,
// everything else as prefixed lines.
type Console struct {
	Out io.Writer

	lineOpen bool
}

func NewConsole() *Console {
	return &Console{Out: os.Stderr}
}

func (c *Console) Report(e Event) {
	if c.Out == nil {
		c.Out = os.Stderr
	}

	if e.Kind == KindProgress {
		fmt.Fprintf(c.Out, "\r%s %s: %3d%% (%s)   ", e.Phase, e.FileID, e.Percent, human(e.Bytes))
		c.lineOpen = true
		return
	}

	if c.lineOpen {
		fmt.Fprintln(c.Out)
		c.lineOpen = false
	}

	switch e.Kind {
	case KindWarning:
		fmt.Fprintf(c.Out, "[WARN] %s\n", c.format(e))
	case KindRetry:
		fmt.Fprintf(c.Out, "[WARN] %s (attempt %d of %d)\n", c.format(e), e.Attempt, e.MaxAttempts)
	case KindFailure:
		fmt.Fprintf(c.Out, "[ERROR] %s: %v\n", c.format(e), e.Err)
	default:
		fmt.Fprintf(c.Out, "[INFO] %s\n", c.format(e))
	}
}

func (c *Console) format(e Event) string {
	s := e.Message
	if e.FileID != "" {
		s = fmt.Sprintf("%s (%s)", s, e.FileID)
	}
	return s
}

func human(n int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)
	switch {
	case n >= GB:
		return fmt.Sprintf("%.2f GB", float64(n)/float64(GB))
	case n >= MB:
		return fmt.Sprintf("%.2f MB", float64(n)/float64(MB))
	case n >= KB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(KB))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
