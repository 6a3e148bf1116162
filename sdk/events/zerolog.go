// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// ZerologSink reports events as structured log lines.
type ZerologSink struct {
	log zerolog.Logger
}

// NewZerologSink wraps an existing logger.
func NewZerologSink(log zerolog.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

// NewConsoleZerologSink builds a sink writing human-readable lines to w.
func NewConsoleZerologSink(w io.Writer) *ZerologSink {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	return &ZerologSink{
		log: zerolog.New(out).Level(zerolog.InfoLevel).With().Timestamp().Logger(),
	}
}

func (s *ZerologSink) Report(e Event) {
	var ev *zerolog.Event
	switch e.Kind {
	case KindWarning, KindRetry:
		ev = s.log.Warn()
	case KindFailure:
		ev = s.log.Error()
	case KindProgress:
		ev = s.log.Debug()
	default:
		ev = s.log.Info()
	}

	ev = ev.Str("kind", string(e.Kind))
	if e.Phase != "" {
		ev = ev.Str("phase", e.Phase)
	}
	if e.FileID != "" {
		ev = ev.Str("file_id", e.FileID)
	}
	if e.Kind == KindProgress {
		ev = ev.Int("percent", e.Percent).Int64("bytes", e.Bytes)
	}
	if e.Kind == KindRetry {
		ev = ev.Int("attempt", e.Attempt).Int("max_attempts", e.MaxAttempts)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	ev.Msg(e.Message)
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
