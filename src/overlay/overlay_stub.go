//go:build !windows

package overlay

import (
	"context"
	"image"

	"screen-annotate/src/editor"
)

type stubHost struct{ events chan editor.Event }

func newHost() Host { return &stubHost{events: make(chan editor.Event)} }

func (h *stubHost) Open(ctx context.Context, backdrop image.Image) error { return ErrUnsupported }

func (h *stubHost) Events() <-chan editor.Event { return h.events }

func (h *stubHost) Present(editor.Scene) {}

func (h *stubHost) Close() error { return nil }
