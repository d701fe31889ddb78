// Package singleinstance lets a second invocation hand its capture to the
// resident process over TCP loopback instead of opening a competing overlay.
package singleinstance

import (
	"context"
	"errors"
)

// ErrCancelled is returned by the client when the resident's session ended
// without output.
var ErrCancelled = errors.New("capture cancelled in resident")

// Server owns the TCP endpoint and answers run-once requests.
type Server interface {
	// Start binds the first port of the configured range and begins accepting.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection and exposes request + response API.
type Conn interface {
	Request() Request
	// RespondSuccess reports an exported capture. detail is a short summary
	// such as the saved path.
	RespondSuccess(detail string) error
	RespondCancelled() error
	RespondError(msg string) error
	Close() error
}

// Request represents a single run-once client request.
type Request struct {
	// ID correlates client and resident log lines.
	ID string
}

// Client attempts to delegate run-once invocation to a resident server.
type Client interface {
	// TryRunOnce scans the port range, performs the handshake and waits for
	// the resident's session to finish. With no resident it returns
	// delegated=false and a nil error.
	TryRunOnce(ctx context.Context) (delegated bool, detail string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
