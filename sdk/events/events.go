// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

// Package events decouples the transfer core from any logging backend:
// components report structured events to an injected Sink instead of
// writing to a logger directly.
package events

type Kind string

const (
	KindPhaseStarted Kind = "phase_started"
	KindPhaseDone    Kind = "phase_done"
	KindProgress     Kind = "progress"
	KindRetry        Kind = "retry"
	KindWarning      Kind = "warning"
	KindFailure      Kind = "failure"
	KindSuccess      Kind = "success"
)

// Phases of one entry's transfer, in order.
const (
	PhaseDownload = "download"
	PhaseExpand   = "expand"
	PhaseUpload   = "upload"
	PhaseCleanup  = "cleanup"
	PhaseDiscover = "discover"
)

type Event struct {
	Kind   Kind
	Phase  string
	FileID string

	// Progress fields, meaningful for KindProgress.
	Percent int
	Bytes   int64

	// Retry fields, meaningful for KindRetry.
	Attempt     int
	MaxAttempts int

	Message string
	Err     error
}

// Sink receives every event the transfer components emit. Implementations
// must be safe for use from a single entry execution; concurrent entry
// executions get their own sink or a thread-safe one.
type Sink interface {
	Report(e Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Report(Event) {}
