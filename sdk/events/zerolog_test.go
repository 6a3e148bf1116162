// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologSinkFields(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerologSink(zerolog.New(&buf))

	sink.Report(Event{
		Kind:        KindRetry,
		Phase:       PhaseDownload,
		FileID:      "f-1",
		Attempt:     2,
		MaxAttempts: 3,
		Message:     "download attempt failed, retrying",
		Err:         errors.New("connection reset"),
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "retry", line["kind"])
	assert.Equal(t, "download", line["phase"])
	assert.Equal(t, "f-1", line["file_id"])
	assert.Equal(t, float64(2), line["attempt"])
	assert.Equal(t, "connection reset", line["error"])
}

func TestZerologSinkLevels(t *testing.T) {
	cases := []struct {
		kind  Kind
		level string
	}{
		{KindFailure, "error"},
		{KindWarning, "warn"},
		{KindSuccess, "info"},
		{KindPhaseStarted, "info"},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		NewZerologSink(zerolog.New(&buf)).Report(Event{Kind: c.kind, Message: "m"})

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, c.level, line["level"], string(c.kind))
	}
}
