// Package overlay is the interactive surface the editor runs on: a borderless
// topmost window over the whole virtual screen that forwards input as editor
// events and paints the frames it is given.
package overlay

import (
	"context"
	"errors"
	"image"

	"screen-annotate/src/editor"
)

// ErrUnsupported is returned by Open on platforms without an overlay host.
var ErrUnsupported = errors.New("interactive overlay is not supported on this platform")

// Host is owned by a single session. Coordinates in events are pixels
// relative to the top-left corner of the backdrop passed to Open.
//
// Events is closed when the surface goes away on its own (window destroyed,
// display change); the session treats that as cancellation.
type Host interface {
	Open(ctx context.Context, backdrop image.Image) error
	Events() <-chan editor.Event
	Present(s editor.Scene)
	Close() error
}

// New returns the platform implementation.
func New() Host { return newHost() }
