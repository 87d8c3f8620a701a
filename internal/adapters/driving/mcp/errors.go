// Package mcp provides an MCP (Model Context Protocol) server adapter for
// restgate. It is the machine facing surface of the metadata operations:
// every tool runs without prompting and returns structured results.
package mcp

import "errors"

// ErrMissingServiceAdmin is returned when the service admin is not provided.
var ErrMissingServiceAdmin = errors.New("mcp: service admin is required")

// errUnavailable is returned by tools whose port was not provided.
var errUnavailable = errors.New("mcp: operation not available")
