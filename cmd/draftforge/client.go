// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftforge Contributors

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	dferr "github.com/draftforge-dev/draftforge/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by gateway
// commands. Generation can take minutes when the failover chain is long.
// Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 15 * time.Minute,
}

// gatewayClient provides HTTP access to a running Draftforge gateway.
type gatewayClient struct {
	baseURL string
	http    *http.Client
}

// newGatewayClient creates a client targeting the given host:port address.
func newGatewayClient(addr string) *gatewayClient {
	return &gatewayClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
func (c *gatewayClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return c.requestError(err)
	}
	return c.decode(resp, dest)
}

// postJSON performs a POST request with a JSON body and decodes the JSON
// response into dest. body may be nil for bodyless posts.
func (c *gatewayClient) postJSON(path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return dferr.Errorf(dferr.CodeCLIRequestFailure, "encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	resp, err := c.http.Post(c.baseURL+path, "application/json", reader)
	if err != nil {
		return c.requestError(err)
	}
	return c.decode(resp, dest)
}

func (c *gatewayClient) requestError(err error) error {
	if isDialError(err) {
		return dferr.New(dferr.CodeCLIGatewayNotRunning, "gateway is not running (connection refused)")
	}
	return dferr.Errorf(dferr.CodeCLIRequestFailure, "request failed: %w", err)
}

func (c *gatewayClient) decode(resp *http.Response, dest any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return dferr.Errorf(dferr.CodeCLIRequestFailure, "gateway returned status %d: %s", resp.StatusCode, gatewayErrorDetail(body))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return dferr.Errorf(dferr.CodeCLIResponseInvalid, "invalid response: %w", err)
	}
	return nil
}

// gatewayErrorDetail pulls the human-readable detail out of an RFC 7807
// problem document, falling back to the raw body.
func gatewayErrorDetail(body []byte) string {
	var problem struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil && problem.Detail != "" {
		return problem.Detail
	}
	return string(body)
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
