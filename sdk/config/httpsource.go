// SPDX-FileCopyrightText: © 2025 NCSA - University of Illinois
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"net"
	"net/http"
	"time"
)

// NewSourceHTTPClient builds the HTTP client used to stream archive
// payloads from their source. The connect budget is short; the overall
// client timeout bounds the whole body read and is measured in hours,
// since a single payload may be tens of gigabytes.
func NewSourceHTTPClient(transfer TransferConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   transfer.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: transfer.ReadTimeout,
		Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   transfer.ConnectTimeout,
			ResponseHeaderTimeout: transfer.ConnectTimeout,
			Proxy:                 http.ProxyFromEnvironment,
		},
	}
}
